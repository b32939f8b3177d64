package service

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

func newInviteService(t *testing.T) (*InviteService, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, sqldb := newMockDB(t)
	base := &Service{DB: db}
	svc := NewInviteService(base, NewAccessService(base))
	return svc, mock, func() { _ = sqldb.Close() }
}

func inviteColumns() []string {
	return []string{"id", "token", "group_id", "room_id", "creator_id", "expires_at", "is_revoked", "redeemed_by", "redeemed_at", "created_at"}
}

func TestCreateInvite(t *testing.T) {
	svc, mock, closeDB := newInviteService(t)
	defer closeDB()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `pv_group` WHERE id = ? ORDER BY `pv_group`.`id` LIMIT ?")).
		WithArgs(uint64(4), 1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "room_id", "name", "created_at"}).
			AddRow(4, 7, "general", time.Now()))

	mock.ExpectQuery(regexp.QuoteMeta("SELECT count(*) FROM `pv_room_admin` WHERE room_id = ? AND user_id = ?")).
		WithArgs(uint64(7), uint64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"count(*)"}).AddRow(1))

	// room_id 必须取分组行里的 7，而不是调用方给的任何值
	// （is_revoked 零值走列默认，不在插入列里）
	mock.ExpectExec("INSERT INTO `pv_invite`").
		WithArgs(sqlmock.AnyArg(), uint64(4), uint64(7), uint64(3), nil, nil, nil, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(11, 1))

	inv, err := svc.CreateInvite(3, 4, 0)
	if err != nil {
		t.Fatalf("CreateInvite: %v", err)
	}
	if inv.GroupID != 4 || inv.RoomID != 7 {
		t.Fatalf("invite ids wrong: %+v", inv)
	}
	if inv.Token == "" {
		t.Fatalf("empty token")
	}
	if inv.ExpiresAt != nil {
		t.Fatalf("ttl 0 should mean no expiry")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestCreateInvite_NotAdmin(t *testing.T) {
	svc, mock, closeDB := newInviteService(t)
	defer closeDB()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `pv_group` WHERE id = ? ORDER BY `pv_group`.`id` LIMIT ?")).
		WithArgs(uint64(4), 1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "room_id", "name", "created_at"}).
			AddRow(4, 7, "general", time.Now()))

	mock.ExpectQuery(regexp.QuoteMeta("SELECT count(*) FROM `pv_room_admin` WHERE room_id = ? AND user_id = ?")).
		WithArgs(uint64(7), uint64(5)).
		WillReturnRows(sqlmock.NewRows([]string{"count(*)"}).AddRow(0))

	_, err := svc.CreateInvite(5, 4, time.Hour)
	if !errors.Is(err, ErrAuthorizationDenied) {
		t.Fatalf("expected ErrAuthorizationDenied, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestAcceptInvite_Success(t *testing.T) {
	svc, mock, closeDB := newInviteService(t)
	defer closeDB()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `pv_invite` WHERE token = ? ORDER BY `pv_invite`.`id` LIMIT ?")).
		WithArgs("tok-1", 1).
		WillReturnRows(sqlmock.NewRows(inviteColumns()).
			AddRow(11, "tok-1", 4, 7, 2, nil, false, nil, nil, time.Now()))

	mock.ExpectExec(regexp.QuoteMeta("UPDATE `pv_invite` SET `redeemed_at`=?,`redeemed_by`=? WHERE id = ? AND is_revoked = ? AND redeemed_by IS NULL AND (expires_at IS NULL OR expires_at > ?)")).
		WithArgs(sqlmock.AnyArg(), uint64(3), uint64(11), false, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	mock.ExpectExec("INSERT INTO `pv_group_member`").
		WithArgs(uint64(4), uint64(3), uint64(7), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(21, 1))
	mock.ExpectCommit()

	groupID, roomID, err := svc.AcceptInvite(context.Background(), "tok-1", 3)
	if err != nil {
		t.Fatalf("AcceptInvite: %v", err)
	}
	if groupID != 4 || roomID != 7 {
		t.Fatalf("got (%d, %d), want (4, 7)", groupID, roomID)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

// CAS 输家：读到行但条件更新不命中（已被并发兑换/撤销/过期），统一 ErrInviteInvalid
func TestAcceptInvite_LostRace(t *testing.T) {
	svc, mock, closeDB := newInviteService(t)
	defer closeDB()

	other := uint64(9)
	redeemedAt := time.Now().Add(-time.Second)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `pv_invite` WHERE token = ? ORDER BY `pv_invite`.`id` LIMIT ?")).
		WithArgs("tok-1", 1).
		WillReturnRows(sqlmock.NewRows(inviteColumns()).
			AddRow(11, "tok-1", 4, 7, 2, nil, false, other, redeemedAt, time.Now()))

	mock.ExpectExec(regexp.QuoteMeta("UPDATE `pv_invite` SET `redeemed_at`=?,`redeemed_by`=? WHERE id = ? AND is_revoked = ? AND redeemed_by IS NULL AND (expires_at IS NULL OR expires_at > ?)")).
		WithArgs(sqlmock.AnyArg(), uint64(3), uint64(11), false, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	_, _, err := svc.AcceptInvite(context.Background(), "tok-1", 3)
	if !errors.Is(err, ErrInviteInvalid) {
		t.Fatalf("expected ErrInviteInvalid, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestAcceptInvite_Expired(t *testing.T) {
	svc, mock, closeDB := newInviteService(t)
	defer closeDB()

	expired := time.Now().Add(-time.Hour)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `pv_invite` WHERE token = ? ORDER BY `pv_invite`.`id` LIMIT ?")).
		WithArgs("tok-old", 1).
		WillReturnRows(sqlmock.NewRows(inviteColumns()).
			AddRow(12, "tok-old", 4, 7, 2, expired, false, nil, nil, time.Now().Add(-2*time.Hour)))

	mock.ExpectExec(regexp.QuoteMeta("UPDATE `pv_invite` SET `redeemed_at`=?,`redeemed_by`=? WHERE id = ? AND is_revoked = ? AND redeemed_by IS NULL AND (expires_at IS NULL OR expires_at > ?)")).
		WithArgs(sqlmock.AnyArg(), uint64(3), uint64(12), false, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	_, _, err := svc.AcceptInvite(context.Background(), "tok-old", 3)
	if !errors.Is(err, ErrInviteInvalid) {
		t.Fatalf("expected ErrInviteInvalid, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestAcceptInvite_NotFound(t *testing.T) {
	svc, mock, closeDB := newInviteService(t)
	defer closeDB()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `pv_invite` WHERE token = ? ORDER BY `pv_invite`.`id` LIMIT ?")).
		WithArgs("tok-none", 1).
		WillReturnRows(sqlmock.NewRows(inviteColumns()))
	mock.ExpectRollback()

	// 不存在与已失效同一个错误，不泄露 token 是否存在过
	_, _, err := svc.AcceptInvite(context.Background(), "tok-none", 3)
	if !errors.Is(err, ErrInviteInvalid) {
		t.Fatalf("expected ErrInviteInvalid, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestAcceptInvite_EmptyInput(t *testing.T) {
	svc, mock, closeDB := newInviteService(t)
	defer closeDB()

	if _, _, err := svc.AcceptInvite(context.Background(), "", 3); !errors.Is(err, ErrInviteInvalid) {
		t.Fatalf("empty token: %v", err)
	}
	if _, _, err := svc.AcceptInvite(context.Background(), "tok", 0); !errors.Is(err, ErrInviteInvalid) {
		t.Fatalf("zero user: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestRevokeInvite_AlreadyRedeemed(t *testing.T) {
	svc, mock, closeDB := newInviteService(t)
	defer closeDB()

	redeemer := uint64(9)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `pv_invite` WHERE token = ? ORDER BY `pv_invite`.`id` LIMIT ?")).
		WithArgs("tok-1", 1).
		WillReturnRows(sqlmock.NewRows(inviteColumns()).
			AddRow(11, "tok-1", 4, 7, 2, nil, false, redeemer, time.Now(), time.Now()))

	// 创建者本人，无需查管理员；条件更新不命中（已兑换为终态）
	mock.ExpectExec(regexp.QuoteMeta("UPDATE `pv_invite` SET `is_revoked`=? WHERE id = ? AND redeemed_by IS NULL")).
		WithArgs(true, uint64(11)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := svc.RevokeInvite(2, "tok-1")
	if !errors.Is(err, ErrInviteInvalid) {
		t.Fatalf("expected ErrInviteInvalid, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}
