package keysetpager

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var _testSorts = Sorts{
	"id": {{Column: "id", Order: OrderASC}},
	"newest": {
		{Column: "created_at", Order: OrderDESC},
		{Column: "id", Order: OrderASC},
	},
}

func mustCursor(t *testing.T, keys ...any) string {
	t.Helper()

	token, err := EncodeCursor(keys)
	require.NoError(t, err)

	return token
}

func Test_Augment_SQL(t *testing.T) {
	sqlMockFnList := []func() (string, *gorm.DB, sqlmock.Sqlmock, error){
		newGORMMySQLMock,
		newGORMPostgresMock,
	}

	type tUser struct {
		ID   uint
		Name string
	}

	tests := []struct {
		name          string
		sortName      string
		opts          []Option
		base          func(db *gorm.DB) *gorm.DB
		expectedQuery string
		expectedArgs  []driver.Value
	}{
		{
			name:          "forward without cursor",
			sortName:      "id",
			opts:          []Option{First(3)},
			expectedQuery: "^SELECT \\*,id AS keyset_0 FROM [`'\"]users[`'\"] WHERE name = ['\"]lol['\"] ORDER BY id LIMIT 4$",
		},
		{
			name:          "forward with cursor",
			sortName:      "id",
			opts:          []Option{First(3), After(mustCursor(t, int64(5)))},
			expectedQuery: "^SELECT \\*,id AS keyset_0 FROM [`'\"]users[`'\"] WHERE name = ['\"]lol['\"] AND id > (?:\\$\\d|\\?) ORDER BY id LIMIT 4$",
			expectedArgs:  []driver.Value{int64(5)},
		},
		{
			name:          "backward without cursor reverses ordering",
			sortName:      "id",
			opts:          []Option{Last(2)},
			expectedQuery: "^SELECT \\*,id AS keyset_0 FROM [`'\"]users[`'\"] WHERE name = ['\"]lol['\"] ORDER BY id DESC LIMIT 3$",
		},
		{
			name:          "backward with cursor",
			sortName:      "id",
			opts:          []Option{Last(2), Before(mustCursor(t, int64(30)))},
			expectedQuery: "^SELECT \\*,id AS keyset_0 FROM [`'\"]users[`'\"] WHERE name = ['\"]lol['\"] AND id < (?:\\$\\d|\\?) ORDER BY id DESC LIMIT 3$",
			expectedArgs:  []driver.Value{int64(30)},
		},
		{
			name:          "forward with multi column cursor",
			sortName:      "newest",
			opts:          []Option{First(5), After(mustCursor(t, "2023-01-01", int64(10)))},
			expectedQuery: "^SELECT \\*,created_at AS keyset_0,id AS keyset_1 FROM [`'\"]users[`'\"] WHERE name = ['\"]lol['\"] AND \\(created_at < (?:\\$\\d|\\?) OR \\(created_at = (?:\\$\\d|\\?) AND id > (?:\\$\\d|\\?)\\)\\) ORDER BY created_at DESC,id LIMIT 6$",
			expectedArgs:  []driver.Value{"2023-01-01", "2023-01-01", int64(10)},
		},
		{
			name:          "backward with multi column cursor",
			sortName:      "newest",
			opts:          []Option{Last(5), Before(mustCursor(t, "2023-01-01", int64(10)))},
			expectedQuery: "^SELECT \\*,created_at AS keyset_0,id AS keyset_1 FROM [`'\"]users[`'\"] WHERE name = ['\"]lol['\"] AND \\(created_at > (?:\\$\\d|\\?) OR \\(created_at = (?:\\$\\d|\\?) AND id < (?:\\$\\d|\\?)\\)\\) ORDER BY created_at,id DESC LIMIT 6$",
			expectedArgs:  []driver.Value{"2023-01-01", "2023-01-01", int64(10)},
		},
		{
			name:     "backward reverses base ordering too",
			sortName: "id",
			opts:     []Option{Last(1)},
			base: func(db *gorm.DB) *gorm.DB {
				return db.Order("name")
			},
			expectedQuery: "^SELECT \\*,id AS keyset_0 FROM [`'\"]users[`'\"] WHERE name = ['\"]lol['\"] ORDER BY name DESC,id DESC LIMIT 2$",
		},
		{
			name:          "zero count still probes one row",
			sortName:      "id",
			opts:          []Option{First(0)},
			expectedQuery: "^SELECT \\*,id AS keyset_0 FROM [`'\"]users[`'\"] WHERE name = ['\"]lol['\"] ORDER BY id LIMIT 1$",
		},
	}

	for _, sqlMockFn := range sqlMockFnList {
		for _, tt := range tests {
			dialect, db, dbMock, err := sqlMockFn()
			t.Run(fmt.Sprintf("%s %s", dialect, tt.name), func(t *testing.T) {
				if err != nil {
					t.Fatalf("gorm open: %v", err)
				}

				expectation := dbMock.ExpectQuery(tt.expectedQuery)
				if len(tt.expectedArgs) > 0 {
					expectation = expectation.WithArgs(tt.expectedArgs...)
				}
				expectation.WillReturnRows(sqlmock.NewRows([]string{"id", "name", "keyset_0"}).AddRow(1, "lol", 1))

				req, err := NewRequest(tt.sortName, append(tt.opts, MaxLimit(10))...)
				require.NoError(t, err)

				base := db.Select("*").Table("users").Where("name = 'lol'")
				if tt.base != nil {
					base = tt.base(base)
				}

				paged, err := Augment(base, req, _testSorts)
				if err != nil {
					t.Fatalf("augment: %v", err)
				}

				err = paged.Find(&[]tUser{}).Error
				if err != nil {
					t.Fatalf("find: %v", err)
				}

				assert.NoError(t, dbMock.ExpectationsWereMet())
			})
		}
	}
}

func Test_Augment_Errors(t *testing.T) {
	_, db, _, err := newGORMPostgresMock()
	require.NoError(t, err)

	tests := []struct {
		name     string
		sortName string
		opts     []Option
		base     func(db *gorm.DB) *gorm.DB
		wantErr  error
	}{
		{
			name:     "malformed cursor",
			sortName: "id",
			opts:     []Option{First(1), After("bm90IGEgY3Vyc29y")},
			wantErr:  ErrMalformedCursor,
		},
		{
			name:     "unknown sort",
			sortName: "nope",
			opts:     []Option{First(1)},
			wantErr:  ErrUnknownSort,
		},
		{
			name:     "cursor of another sort",
			sortName: "newest",
			opts:     []Option{First(1), After(mustCursor(t, int64(1)))},
			wantErr:  ErrCursorMismatch,
		},
		{
			name:     "raw ordering cannot be reversed",
			sortName: "id",
			opts:     []Option{Last(1)},
			base: func(db *gorm.DB) *gorm.DB {
				return db.Order("name ASC")
			},
			wantErr: ErrIrreversibleOrder,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := NewRequest(tt.sortName, append(tt.opts, MaxLimit(10))...)
			require.NoError(t, err)

			base := db.Table("users")
			if tt.base != nil {
				base = tt.base(base)
			}

			_, err = Augment(base, req, _testSorts)
			require.ErrorIs(t, err, tt.wantErr)
			require.False(t, IsValidationError(err))
		})
	}
}

type tFailingProvider struct {
	Sorts
	err error
}

func (p tFailingProvider) ApplySelect(*gorm.DB, string) (*gorm.DB, error) {
	return nil, p.err
}

func Test_Augment_ProviderErrorIsWrapped(t *testing.T) {
	_, db, _, err := newGORMMySQLMock()
	require.NoError(t, err)

	providerErr := errors.New("projection unavailable")
	_, err = Augment(db.Table("users"), MustNewRequest("id", First(1), MaxLimit(1)), tFailingProvider{
		Sorts: _testSorts,
		err:   providerErr,
	})
	require.ErrorIs(t, err, providerErr)
}

func Test_Augment_NilArguments(t *testing.T) {
	_, db, _, err := newGORMMySQLMock()
	require.NoError(t, err)

	_, err = Augment(db, nil, _testSorts)
	require.Error(t, err)

	_, err = Augment(db, MustNewRequest("id", First(1), MaxLimit(1)), nil)
	require.Error(t, err)
}
