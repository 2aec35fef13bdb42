package handler

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/mock"
)

// handlerMockDB implements core.DB for handler tests.
type handlerMockDB struct {
	mock.Mock
}

func (m *handlerMockDB) Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
	args := m.Called(ctx, sql, arguments)
	return args.Get(0).(pgconn.CommandTag), args.Error(1)
}

func (m *handlerMockDB) Query(ctx context.Context, sql string, arguments ...any) (pgx.Rows, error) {
	args := m.Called(ctx, sql, arguments)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(pgx.Rows), args.Error(1)
}

func (m *handlerMockDB) QueryRow(ctx context.Context, sql string, arguments ...any) pgx.Row {
	args := m.Called(ctx, sql, arguments)
	return args.Get(0).(pgx.Row)
}

func (m *handlerMockDB) Begin(ctx context.Context) (pgx.Tx, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(pgx.Tx), args.Error(1)
}

type mockRow struct {
	scanFunc func(dest ...any) error
}

func (m *mockRow) Scan(dest ...any) error {
	return m.scanFunc(dest...)
}

func errRow(err error) *mockRow {
	return &mockRow{scanFunc: func(dest ...any) error { return err }}
}

func stringRow(v string) *mockRow {
	return &mockRow{scanFunc: func(dest ...any) error {
		*(dest[0].(*string)) = v
		return nil
	}}
}

func boolRow(v bool) *mockRow {
	return &mockRow{scanFunc: func(dest ...any) error {
		*(dest[0].(*bool)) = v
		return nil
	}}
}

func sqlContaining(fragment string) any {
	return mock.MatchedBy(func(sql string) bool { return strings.Contains(sql, fragment) })
}

func insertTag() pgconn.CommandTag { return pgconn.NewCommandTag("INSERT 0 1") }
func updateTag() pgconn.CommandTag { return pgconn.NewCommandTag("UPDATE 1") }
func deleteTag(n int) pgconn.CommandTag {
	if n == 0 {
		return pgconn.NewCommandTag("DELETE 0")
	}
	return pgconn.NewCommandTag("DELETE 1")
}

// mockRowsBase supplies the pgx.Rows methods list handlers do not use.
type mockRowsBase struct{}

func (mockRowsBase) Err() error                                   { return nil }
func (mockRowsBase) Close()                                       {}
func (mockRowsBase) CommandTag() pgconn.CommandTag                { return pgconn.CommandTag{} }
func (mockRowsBase) FieldDescriptions() []pgconn.FieldDescription { return nil }
func (mockRowsBase) RawValues() [][]byte                          { return nil }
func (mockRowsBase) Values() ([]any, error)                       { return nil, nil }
func (mockRowsBase) Conn() *pgx.Conn                              { return nil }

// handlerMockTx implements pgx.Tx for services that run in a transaction.
type handlerMockTx struct {
	mock.Mock
}

func (m *handlerMockTx) Begin(ctx context.Context) (pgx.Tx, error) { return nil, nil }
func (m *handlerMockTx) Commit(ctx context.Context) error           { return m.Called(ctx).Error(0) }
func (m *handlerMockTx) Rollback(ctx context.Context) error         { return m.Called(ctx).Error(0) }

func (m *handlerMockTx) Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
	args := m.Called(ctx, sql, arguments)
	return args.Get(0).(pgconn.CommandTag), args.Error(1)
}

func (m *handlerMockTx) QueryRow(ctx context.Context, sql string, arguments ...any) pgx.Row {
	args := m.Called(ctx, sql, arguments)
	return args.Get(0).(pgx.Row)
}

func (m *handlerMockTx) Query(ctx context.Context, sql string, arguments ...any) (pgx.Rows, error) {
	return nil, nil
}

func (m *handlerMockTx) CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error) {
	return 0, nil
}

func (m *handlerMockTx) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults { return nil }
func (m *handlerMockTx) LargeObjects() pgx.LargeObjects                             { return pgx.LargeObjects{} }
func (m *handlerMockTx) Conn() *pgx.Conn                                            { return nil }

func (m *handlerMockTx) Prepare(ctx context.Context, name, sql string) (*pgconn.StatementDescription, error) {
	return nil, nil
}
