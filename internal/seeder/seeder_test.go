package seeder

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"budget/internal/core"
	"budget/internal/log"
	"budget/internal/query"
	"budget/internal/services"
	"budget/internal/storage"
)

func newTestSeeder(t *testing.T, dir string) (*Seeder, *storage.SQLiteRepository) {
	t.Helper()
	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "budget.db"), log.Discard())
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	return New(dir, repo, services.NewExpenseService(repo, nil, log.Discard()), log.Discard()), repo
}

func TestSeeder_Run(t *testing.T) {
	s, repo := newTestSeeder(t, "testdata")
	ctx := context.Background()

	r, err := s.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"user": 2, "bill": 2, "expense": 2, "income": 1, "pokemon": 2}, r.Created)
	assert.Empty(t, r.Skipped)

	ada, err := repo.Users.FindOne(ctx, query.FindOneOptions{Value: "ada"})
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", ada.Email)
	assert.Equal(t, core.RoleAdmin, ada.Role)

	rent, err := repo.Expenses.FindOne(ctx, query.FindOneOptions{Value: "rent"})
	require.NoError(t, err)
	require.NotNil(t, rent.Bill)
	assert.Equal(t, "House", rent.Bill.Name)

	months, err := repo.Months.List(ctx, query.Options{Parameters: &query.Parameters{Year: 2025}})
	require.NoError(t, err)
	// 12 rent + 2 laptop instalments in 2025 + 12 salary months
	assert.Len(t, months.Rows(), 26)

	pika, err := repo.Pokemon.FindOneByOrder(ctx, query.FindOneByOrderOptions[core.Pokemon]{Order: 25})
	require.NoError(t, err)
	assert.Equal(t, "pikachu", pika.Name)
	assert.Equal(t, core.StringList{"electric"}, pika.Types)
}

func TestSeeder_RunIsIdempotent(t *testing.T) {
	s, repo := newTestSeeder(t, "testdata")
	ctx := context.Background()

	_, err := s.Run(ctx)
	require.NoError(t, err)
	r, err := s.Run(ctx)
	require.NoError(t, err)

	assert.Empty(t, r.Created)
	assert.Equal(t, map[string]int{"user": 2, "bill": 2, "expense": 2, "income": 1, "pokemon": 2}, r.Skipped)

	res, err := repo.Expenses.List(ctx, query.Options{})
	require.NoError(t, err)
	assert.Len(t, res.Rows(), 2)
}

func TestSeeder_DeletedRowsStayDeleted(t *testing.T) {
	s, repo := newTestSeeder(t, "testdata")
	ctx := context.Background()

	_, err := s.Run(ctx)
	require.NoError(t, err)

	rent, err := repo.Expenses.FindOne(ctx, query.FindOneOptions{Value: "rent"})
	require.NoError(t, err)
	require.NoError(t, s.expenses.Delete(ctx, rent.ID))

	alan, err := repo.Users.FindOne(ctx, query.FindOneOptions{Value: "alan"})
	require.NoError(t, err)
	_, err = repo.SoftDelete(ctx, "user", "id", alan.ID)
	require.NoError(t, err)

	r, err := s.Run(ctx)
	require.NoError(t, err)
	assert.Empty(t, r.Created)
	assert.Equal(t, map[string]int{"user": 2, "bill": 2, "expense": 2, "income": 1, "pokemon": 2}, r.Skipped)

	res, err := repo.Expenses.List(ctx, query.Options{Parameters: &query.Parameters{Name: "rent"}})
	require.NoError(t, err)
	assert.Empty(t, res.Rows())
}

func TestSeeder_ExpenseBillIsTheOwners(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{
		UsersFile: `[{"name": "Ada", "email": "ada@example.com"}, {"name": "Alan", "email": "alan@example.com"}]`,
		BillsFile: `[{"name": "House", "year": 2025, "user_email": "ada@example.com"},
			{"name": "House", "year": 2025, "user_email": "alan@example.com"}]`,
		ExpensesFile: `[{"name": "Rent", "year": 2025, "type": "fixed", "total": 1000, "bill": "House",
			"user_email": "alan@example.com", "start_month": 1}]`,
	}
	for name, body := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
	}
	s, repo := newTestSeeder(t, dir)
	ctx := context.Background()

	r, err := s.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, r.Created["expense"])

	rent, err := repo.Expenses.FindOne(ctx, query.FindOneOptions{
		Options: query.Options{Relations: []string{"bill", "bill.user"}},
		Value:   "rent",
	})
	require.NoError(t, err)
	require.NotNil(t, rent.Bill)
	require.NotNil(t, rent.Bill.User)
	assert.Equal(t, "alan@example.com", rent.Bill.User.Email)
}

func TestSeeder_MissingFilesAreSkipped(t *testing.T) {
	s, _ := newTestSeeder(t, t.TempDir())
	r, err := s.Run(context.Background())
	require.NoError(t, err)
	assert.Empty(t, r.Created)
}

func TestSeeder_Errors(t *testing.T) {
	t.Run("malformed file", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, UsersFile), []byte(`{"not": "a list"}`), 0o644))
		s, _ := newTestSeeder(t, dir)
		_, err := s.Run(context.Background())
		assert.ErrorContains(t, err, "parse seed users.json")
	})

	t.Run("unknown owner", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, BillsFile),
			[]byte(`[{"name": "House", "year": 2025, "user_email": "ghost@example.com"}]`), 0o644))
		s, _ := newTestSeeder(t, dir)
		_, err := s.Run(context.Background())
		assert.ErrorIs(t, err, query.ErrNotFound)
	})
}
