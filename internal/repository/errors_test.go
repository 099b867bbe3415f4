package repository_test

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/tv-ad-booking/internal/model"
	"github.com/iliyamo/tv-ad-booking/internal/repository"
)

func TestIsTransient(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"deadline", fmt.Errorf("query: %w", context.DeadlineExceeded), true},
		{"bad conn", driver.ErrBadConn, true},
		{"invalid conn", mysql.ErrInvalidConn, true},
		{"deadlock", &mysql.MySQLError{Number: 1213}, true},
		{"lock wait", &mysql.MySQLError{Number: 1205}, true},
		{"duplicate", &mysql.MySQLError{Number: 1062}, false},
		{"plain", errors.New("boom"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, repository.IsTransient(tt.err))
		})
	}
}

func TestChannelRepo_MySQLDuplicateIsConflict(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO channels")).
		WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry"})

	err = repository.NewChannelRepo(db).Create(context.Background(), &model.Channel{ID: "c1", Name: "News", CreatedAt: t0})
	assert.ErrorIs(t, err, repository.ErrConflict)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingRepo_CompareAndSetRereadsOnZeroRows(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta("UPDATE bookings SET status = ?, updated_at = ? WHERE id = ? AND status = ?")).
		WithArgs("approved", sqlmock.AnyArg(), "b1", "pending").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta("FROM bookings WHERE id = ?")).
		WithArgs("b1").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err = repository.NewBookingRepo(db).CompareAndSetStatus(context.Background(), "b1", model.BookingApproved, t0, model.BookingPending)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNotificationRepo_MarkAllReadRollsBackOnError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE notifications SET is_read = ?")).
		WithArgs(true, uint64(5), false).
		WillReturnError(&mysql.MySQLError{Number: 1205, Message: "Lock wait timeout exceeded"})
	mock.ExpectRollback()

	_, err = repository.NewNotificationRepo(db).MarkAllRead(context.Background(), 5)
	require.Error(t, err)
	assert.True(t, repository.IsTransient(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}
