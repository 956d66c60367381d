package memory

import (
	"context"
	"maps"
	"sync"

	"github.com/geocoder89/plantdoctor/internal/domain/culture"
	"github.com/geocoder89/plantdoctor/internal/domain/diagnosis"
	"github.com/geocoder89/plantdoctor/internal/domain/planting"
	"github.com/geocoder89/plantdoctor/internal/domain/post"
	"github.com/geocoder89/plantdoctor/internal/domain/resettoken"
	"github.com/geocoder89/plantdoctor/internal/domain/user"
	"github.com/geocoder89/plantdoctor/internal/repo"
)

// Store keeps every table in process memory behind a single mutex. A
// transaction holds that mutex until Commit or Rollback, so concurrent
// writers serialize the same way row locks would make them in postgres.
type Store struct {
	mu sync.Mutex
	tables
}

type tables struct {
	users     map[string]user.User
	emails    map[string]string // email -> user id
	tokens    map[string]resettoken.Token
	cultures  map[string]culture.Culture
	interests map[string]map[string]struct{} // user id -> culture ids
	plantings map[string]planting.Planting
	history   map[string]planting.HistoryEvent
	posts     map[string]post.Post
	diagnoses map[string]diagnosis.Diagnosis
}

func New() *Store {
	s := &Store{
		tables: tables{
			users:     make(map[string]user.User),
			emails:    make(map[string]string),
			tokens:    make(map[string]resettoken.Token),
			cultures:  make(map[string]culture.Culture),
			interests: make(map[string]map[string]struct{}),
			plantings: make(map[string]planting.Planting),
			history:   make(map[string]planting.HistoryEvent),
			posts:     make(map[string]post.Post),
			diagnoses: make(map[string]diagnosis.Diagnosis),
		},
	}

	for _, c := range culture.DefaultCatalog() {
		s.cultures[c.ID] = c
	}

	return s
}

func (t tables) clone() tables {
	interests := make(map[string]map[string]struct{}, len(t.interests))
	for uid, set := range t.interests {
		interests[uid] = maps.Clone(set)
	}

	return tables{
		users:     maps.Clone(t.users),
		emails:    maps.Clone(t.emails),
		tokens:    maps.Clone(t.tokens),
		cultures:  maps.Clone(t.cultures),
		interests: interests,
		plantings: maps.Clone(t.plantings),
		history:   maps.Clone(t.history),
		posts:     maps.Clone(t.posts),
		diagnoses: maps.Clone(t.diagnoses),
	}
}

// Tx restores the snapshot taken at begin when rolled back.
type Tx struct {
	s    *Store
	snap tables
	done bool
}

func (s *Store) begin() *Tx {
	s.mu.Lock()
	return &Tx{s: s, snap: s.tables.clone()}
}

func (tx *Tx) Commit(_ context.Context) error {
	if tx.done {
		return nil
	}
	tx.done = true
	tx.s.mu.Unlock()
	return nil
}

func (tx *Tx) Rollback(_ context.Context) error {
	if tx.done {
		return nil
	}
	tx.done = true
	tx.s.tables = tx.snap
	tx.s.mu.Unlock()
	return nil
}

func (s *Store) own(tx repo.Tx) (*Tx, error) {
	mtx, ok := tx.(*Tx)
	if !ok || mtx.s != s || mtx.done {
		return nil, repo.ErrForeignTx
	}
	return mtx, nil
}

// withTx runs fn under a transaction, committing on nil and rolling back
// otherwise.
func (s *Store) withTx(ctx context.Context, fn func() error) error {
	tx := s.begin()
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (s *Store) Users() *UsersRepo { return &UsersRepo{s: s} }

func (s *Store) ResetTokens() *ResetTokensRepo { return &ResetTokensRepo{s: s} }

func (s *Store) Cultures() *CulturesRepo { return &CulturesRepo{s: s} }

func (s *Store) Plantings() *PlantingsRepo { return &PlantingsRepo{s: s} }

func (s *Store) Posts() *PostsRepo { return &PostsRepo{s: s} }

func (s *Store) Diagnoses() *DiagnosesRepo { return &DiagnosesRepo{s: s} }

// Ping satisfies readiness checks.
func (s *Store) Ping(_ context.Context) error { return nil }
