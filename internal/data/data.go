package data

import (
	"github.com/elguiriashing/amsterdam/internal/biz/repo"
	"github.com/elguiriashing/amsterdam/internal/infra/telegram"
)

// Repositories contains all repositories
type Repositories struct {
	Platform repo.PlatformRepo
	Journal  repo.WipeJournalRepo // nil when the journal is disabled
}

// NewRepositories creates all repositories. An empty journalDBPath disables the journal.
func NewRepositories(client *telegram.Client, journalDBPath string) (*Repositories, error) {
	repos := &Repositories{
		Platform: NewTelegramRepo(client, telegram.ParseModeHTML),
	}

	if journalDBPath != "" {
		journal, err := NewJournalRepo(journalDBPath)
		if err != nil {
			return nil, err
		}
		repos.Journal = journal
	}

	return repos, nil
}

// Close releases repository resources
func (r *Repositories) Close() error {
	if r.Journal != nil {
		return r.Journal.Close()
	}
	return nil
}
