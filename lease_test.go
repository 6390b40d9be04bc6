package lockstep

import (
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	sqladapter "github.com/arloliu/lockstep/adapter/sql"
	"github.com/arloliu/lockstep/dialect/mysql"
	"github.com/arloliu/lockstep/internal/logging"
	"github.com/arloliu/lockstep/types"
)

func newMock(t *testing.T) (sqladapter.DB, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	return sqladapter.WrapDB(db), mock
}

func TestAcquireLeasesPreparesMySQLSession(t *testing.T) {
	db, mock := newMock(t)

	mock.ExpectExec("SET autocommit = 0").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("SET SESSION TRANSACTION ISOLATION LEVEL REPEATABLE READ").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("ROLLBACK").WillReturnResult(sqlmock.NewResult(0, 0))

	sc := scenarioOf(uniquePlan("t1", 1))
	sc.DefaultIsolation = types.IsolationRepeatableRead

	leases, err := acquireLeases(t.Context(), db, mysql.New(), sc, time.Second, logging.Discard)
	require.NoError(t, err)
	require.Len(t, leases, 1)
	require.Equal(t, "t1", leases[0].threadID)

	require.NoError(t, releaseAll(leases, logging.Discard))
	// a second release is a no-op
	require.NoError(t, leases[0].release())

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAcquireLeasesSkipsUnsetIsolation(t *testing.T) {
	db, mock := newMock(t)

	mock.ExpectExec("SET autocommit = 0").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("ROLLBACK").WillReturnResult(sqlmock.NewResult(0, 0))

	leases, err := acquireLeases(t.Context(), db, mysql.New(), scenarioOf(uniquePlan("t1", 1)), time.Second, logging.Discard)
	require.NoError(t, err)
	require.NoError(t, releaseAll(leases, logging.Discard))

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAcquireLeasesSetupFailureReleasesConnection(t *testing.T) {
	db, mock := newMock(t)

	mock.ExpectExec("SET autocommit = 0").WillReturnError(errors.New("access denied"))
	mock.ExpectExec("ROLLBACK").WillReturnResult(sqlmock.NewResult(0, 0))

	_, err := acquireLeases(t.Context(), db, mysql.New(), scenarioOf(uniquePlan("t1", 1)), time.Second, logging.Discard)
	require.ErrorIs(t, err, types.ErrConnectionAcquire)
	require.ErrorContains(t, err, "access denied")

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestLeaseReleaseIgnoresRollbackFailure(t *testing.T) {
	db, mock := newMock(t)

	mock.ExpectExec("SET autocommit = 0").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("ROLLBACK").WillReturnError(errors.New("no transaction is active"))

	leases, err := acquireLeases(t.Context(), db, mysql.New(), scenarioOf(uniquePlan("t1", 1)), time.Second, logging.Discard)
	require.NoError(t, err)
	require.NoError(t, releaseAll(leases, logging.Discard))

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestReleaseAllAggregatesCloseFailures(t *testing.T) {
	db := newFakeDB()
	c1, err := db.Conn(t.Context())
	require.NoError(t, err)
	c2, err := db.Conn(t.Context())
	require.NoError(t, err)

	// closing up front makes the release-time close fail
	require.NoError(t, c1.Close())
	require.NoError(t, c2.Close())

	leases := []*lease{
		{threadID: "a", conn: c1, logger: logging.Discard},
		nil,
		{threadID: "b", conn: c2, logger: logging.Discard},
	}

	err = releaseAll(leases, logging.Discard)
	require.Error(t, err)
	require.ErrorContains(t, err, "thread a")
	require.ErrorContains(t, err, "thread b")
}
