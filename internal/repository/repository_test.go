package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gormmysql "gorm.io/driver/mysql"
	"gorm.io/gorm"

	"github.com/oszuidwest/zwfm-mixdown/internal/models"
)

func TestParseDBError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"nil", nil, nil},
		{"record not found", gorm.ErrRecordNotFound, ErrNotFound},
		{"wrapped not found", fmt.Errorf("query: %w", gorm.ErrRecordNotFound), ErrNotFound},
		{"duplicate", &mysql.MySQLError{Number: 1062, Message: "Duplicate entry 'x' for key 'name'"}, ErrDuplicateKey},
		{"too long", &mysql.MySQLError{Number: 1406, Message: "Data too long for column 'name'"}, ErrDataTooLong},
		{"duplicate text", errors.New("Error 1062: Duplicate entry 'x'"), ErrDuplicateKey},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseDBError(tt.err)
			if tt.want == nil {
				assert.NoError(t, got)
				return
			}
			assert.ErrorIs(t, got, tt.want)
		})
	}

	other := &mysql.MySQLError{Number: 1205, Message: "Lock wait timeout exceeded"}
	assert.Equal(t, other, ParseDBError(other))
}

func TestParseAssetSeed(t *testing.T) {
	assets, err := ParseAssetSeed(strings.NewReader(`
assets:
  - name: Calm piano
    category: background
    url: https://cdn.example.org/beds/calm-piano.mp3
    duration_seconds: 62.5
  - name: Chime
    category: effect
    file: chime.wav
`))
	require.NoError(t, err)
	require.Len(t, assets, 2)

	assert.Equal(t, "Calm piano", assets[0].Name)
	assert.Equal(t, models.AssetCategoryBackground, assets[0].Category)
	require.NotNil(t, assets[0].DurationSeconds)
	assert.Equal(t, 62.5, *assets[0].DurationSeconds)
	assert.Equal(t, "chime.wav", assets[1].FileName)
	assert.Empty(t, assets[1].URL)
}

func TestParseAssetSeed_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{"missing name", "assets:\n  - category: background\n    url: http://x\n", "name is required"},
		{"bad category", "assets:\n  - name: A\n    category: jingle\n    url: http://x\n", "unknown category"},
		{"no source", "assets:\n  - name: A\n    category: effect\n", "exactly one of url or file"},
		{"two sources", "assets:\n  - name: A\n    category: effect\n    url: http://x\n    file: a.wav\n", "exactly one of url or file"},
		{"duplicate", "assets:\n  - {name: A, category: effect, file: a.wav}\n  - {name: A, category: effect, file: b.wav}\n", "duplicate name"},
		{"unknown field", "assets:\n  - {name: A, category: effect, file: a.wav, volume: 3}\n", "invalid asset seed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseAssetSeed(strings.NewReader(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

type fakeAssetRepo struct {
	AssetRepository
	upserted []string
	failOn   string
}

func (f *fakeAssetRepo) Upsert(_ context.Context, a *models.MixingAsset) error {
	if a.Name == f.failOn {
		return ErrDataTooLong
	}
	f.upserted = append(f.upserted, a.Name)
	return nil
}

// fakeTx runs fn directly and records the outcome.
type fakeTx struct {
	calls int
	err   error
}

func (f *fakeTx) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	f.calls++
	f.err = fn(ctx)
	return f.err
}

func TestSeedAssets(t *testing.T) {
	assets := []models.MixingAsset{{Name: "A"}, {Name: "B"}, {Name: "C"}}

	tx := &fakeTx{}
	repo := &fakeAssetRepo{}
	n, err := SeedAssets(context.Background(), tx, repo, assets)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, 1, tx.calls)
	assert.Equal(t, []string{"A", "B", "C"}, repo.upserted)

	tx = &fakeTx{}
	repo = &fakeAssetRepo{failOn: "B"}
	n, err = SeedAssets(context.Background(), tx, repo, assets)
	assert.ErrorIs(t, err, ErrDataTooLong)
	assert.ErrorIs(t, tx.err, ErrDataTooLong)
	assert.Zero(t, n)
}

// dryRunDB builds statements without a server connection.
func dryRunDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(gormmysql.New(gormmysql.Config{
		DSN:                       "mixdown:mixdown@tcp(127.0.0.1:3306)/mixdown?parseTime=true",
		SkipInitializeWithVersion: true,
	}), &gorm.Config{DryRun: true, DisableAutomaticPing: true})
	require.NoError(t, err)
	return db
}

func TestListScopes_SQL(t *testing.T) {
	db := dryRunDB(t)

	query := &ListQuery{
		Limit:  10,
		Offset: 20,
		Search: "bed",
		Sort:   []SortField{{Field: "created_at", Direction: SortDesc}, {Field: "password", Direction: SortAsc}},
		Filters: []FilterCondition{
			{Field: "category", Value: "background"},
			{Field: "1=1; DROP TABLE mixes", Value: "x"},
		},
	}

	stmt := db.Model(&models.MixingAsset{}).Scopes(
		SearchScope([]string{"name"}, query.Search),
		FilterScope(query.Filters, assetFieldMapping),
		SortScope(query.Sort, assetFieldMapping, "name ASC"),
		PaginationScope(query.Limit, query.Offset),
	).Find(&[]models.MixingAsset{}).Statement

	sql := stmt.SQL.String()
	assert.Contains(t, sql, "FROM `mixing_assets`")
	assert.Contains(t, sql, "(name LIKE ?)")
	assert.Contains(t, sql, "category = ?")
	assert.Contains(t, sql, "ORDER BY created_at DESC")
	assert.Contains(t, sql, "LIMIT")
	assert.Contains(t, sql, "OFFSET")
	assert.NotContains(t, sql, "DROP")
	assert.NotContains(t, sql, "password")
	require.GreaterOrEqual(t, len(stmt.Vars), 2)
	assert.Equal(t, []any{"%bed%", "background"}, stmt.Vars[:2])
}

func TestMixRepository_TransitionRejectsForbiddenMoves(t *testing.T) {
	repo := NewMixRepository(dryRunDB(t))
	err := repo.Transition(context.Background(), 1, models.MixStatusReady, models.MixStatusDecoding, nil)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestDBFromContext(t *testing.T) {
	db := dryRunDB(t)
	tx := db.Session(&gorm.Session{NewDB: true})

	assert.Same(t, db, DBFromContext(context.Background(), db))
	assert.Same(t, tx, DBFromContext(ContextWithTx(context.Background(), tx), db))
}
