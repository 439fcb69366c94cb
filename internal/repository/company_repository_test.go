package repository

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aslboq/catering-backend/internal/model"
)

// stubConn is a minimal database/sql driver connection used to observe
// transaction behavior without a MySQL server. Exec calls are recorded;
// the one whose query contains failOn returns failErr.
type stubConn struct {
	execs      []string
	failOn     string
	failErr    error
	nextID     int64
	committed  int
	rolledBack int
}

func (c *stubConn) Prepare(string) (driver.Stmt, error) {
	return nil, errors.New("prepare unsupported")
}
func (c *stubConn) Close() error { return nil }
func (c *stubConn) Begin() (driver.Tx, error) {
	return &stubTx{conn: c}, nil
}
func (c *stubConn) BeginTx(context.Context, driver.TxOptions) (driver.Tx, error) {
	return c.Begin()
}

func (c *stubConn) ExecContext(_ context.Context, query string, _ []driver.NamedValue) (driver.Result, error) {
	c.execs = append(c.execs, query)
	if c.failOn != "" && strings.Contains(query, c.failOn) {
		return nil, c.failErr
	}
	c.nextID++
	return stubResult(c.nextID), nil
}

type stubResult int64

func (r stubResult) LastInsertId() (int64, error) { return int64(r), nil }
func (r stubResult) RowsAffected() (int64, error) { return 1, nil }

type stubTx struct{ conn *stubConn }

func (t *stubTx) Commit() error   { t.conn.committed++; return nil }
func (t *stubTx) Rollback() error { t.conn.rolledBack++; return nil }

type stubConnector struct{ conn *stubConn }

func (s stubConnector) Connect(context.Context) (driver.Conn, error) { return s.conn, nil }
func (s stubConnector) Driver() driver.Driver                        { return stubDriver{} }

type stubDriver struct{}

func (stubDriver) Open(string) (driver.Conn, error) {
	return nil, errors.New("open via connector")
}

func newStubDB(t *testing.T, conn *stubConn) *sql.DB {
	t.Helper()
	db := sql.OpenDB(stubConnector{conn: conn})
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestCreateWithAdminCommitsBothRows(t *testing.T) {
	conn := &stubConn{}
	repo := NewCompanyRepo(newStubDB(t, conn))

	company := model.Company{CompanyName: "ASL Catering", CompanyEmail: "Ops@ASL.example"}
	admin := model.User{Username: "boss", Email: "Ops@ASL.example", Role: model.RoleAdmin, IsActive: true}

	companyID, adminID, err := repo.CreateWithAdmin(context.Background(), &company, &admin, "s3cret", 4)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), companyID)
	assert.Equal(t, uint64(2), adminID)
	assert.Equal(t, companyID, admin.CompanyID)
	assert.Equal(t, "ops@asl.example", company.CompanyEmail)
	assert.Equal(t, "ops@asl.example", admin.Email)
	assert.Equal(t, 1, conn.committed)
	assert.Equal(t, 0, conn.rolledBack)
	require.Len(t, conn.execs, 2)
	assert.Contains(t, conn.execs[0], "INSERT INTO companies")
	assert.Contains(t, conn.execs[1], "INSERT INTO users")
}

// A duplicate admin email must roll the company row back too, otherwise an
// orphaned unverified company blocks both re-registration and resend.
func TestCreateWithAdminRollsBackWhenAdminEmailTaken(t *testing.T) {
	conn := &stubConn{
		failOn:  "INSERT INTO users",
		failErr: errors.New("Error 1062 (23000): Duplicate entry 'ops@asl.example' for key 'users.email'"),
	}
	repo := NewCompanyRepo(newStubDB(t, conn))

	company := model.Company{CompanyName: "ASL Catering", CompanyEmail: "ops@asl.example"}
	admin := model.User{Username: "boss", Email: "ops@asl.example", Role: model.RoleAdmin}

	_, _, err := repo.CreateWithAdmin(context.Background(), &company, &admin, "s3cret", 4)
	require.ErrorIs(t, err, ErrEmailExists)
	assert.Equal(t, 0, conn.committed)
	assert.Equal(t, 1, conn.rolledBack)
	require.Len(t, conn.execs, 2)
}

func TestCreateWithAdminDuplicateCompanyEmailSkipsAdminInsert(t *testing.T) {
	conn := &stubConn{
		failOn:  "INSERT INTO companies",
		failErr: errors.New("Error 1062 (23000): Duplicate entry 'ops@asl.example' for key 'companies.company_email'"),
	}
	repo := NewCompanyRepo(newStubDB(t, conn))

	company := model.Company{CompanyName: "ASL Catering", CompanyEmail: "ops@asl.example"}
	admin := model.User{Username: "boss", Email: "ops@asl.example", Role: model.RoleAdmin}

	_, _, err := repo.CreateWithAdmin(context.Background(), &company, &admin, "s3cret", 4)
	require.ErrorIs(t, err, ErrEmailExists)
	assert.Equal(t, 0, conn.committed)
	require.Len(t, conn.execs, 1)
}
