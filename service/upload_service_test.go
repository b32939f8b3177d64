package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/roomvault/vault-sdk/models"
	"github.com/roomvault/vault-sdk/storage"
	"github.com/roomvault/vault-sdk/transform"
	"github.com/roomvault/vault-sdk/vibe"
)

// fakeStore 内存版存储网关，记录每次写入并可按桶注入失败。
type storeCall struct {
	Bucket      string
	Path        string
	ContentType string
	Size        int
}

type fakeStore struct {
	calls       []storeCall
	failBuckets map[string]bool
}

func (f *fakeStore) Store(_ context.Context, bucket, path string, data []byte, contentType string) (string, error) {
	if f.failBuckets[bucket] {
		return "", fmt.Errorf("%w: injected", storage.ErrWriteFailed)
	}
	f.calls = append(f.calls, storeCall{Bucket: bucket, Path: path, ContentType: contentType, Size: len(data)})
	return "http://cdn/" + bucket + "/" + path, nil
}

func (f *fakeStore) MediaBucket() string { return "media" }
func (f *fakeStore) ThumbBucket() string { return "media-thumbs" }

// fakeNormalizer 固定返回预置结果
type fakeNormalizer struct {
	out *transform.Normalized
	err error
}

func (f *fakeNormalizer) Normalize(transform.Asset) (*transform.Normalized, error) {
	return f.out, f.err
}

// fakeAnalyzer 可注入失败的分析服务
type fakeAnalyzer struct {
	analysis vibe.Analysis
	err      error
}

func (f *fakeAnalyzer) AnalyzePhoto(context.Context, string) (vibe.Analysis, error) {
	return f.analysis, f.err
}

func (f *fakeAnalyzer) Summarize(context.Context, []vibe.SummaryItem) (string, error) {
	return "", errors.New("not used")
}

func newUploadService(t *testing.T, store *fakeStore, n Normalizer, analyzer vibe.Analyzer) (*UploadService, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, sqldb := newMockDB(t)
	base := &Service{DB: db, Store: store}
	access := NewAccessService(base)
	media := NewMediaService(base, access)
	rooms := NewRoomService(base, access)
	svc := NewUploadService(base, access, media, rooms, n, analyzer)
	return svc, mock, func() { _ = sqldb.Close() }
}

func expectMemberAndSettings(mock sqlmock.Sqlmock, roomID, userID uint64, member bool, archived bool) {
	count := 0
	if member {
		count = 1
	}
	mock.ExpectQuery(regexp.QuoteMeta("SELECT count(*) FROM `pv_group_member` WHERE room_id = ? AND user_id = ?")).
		WithArgs(roomID, userID).
		WillReturnRows(sqlmock.NewRows([]string{"count(*)"}).AddRow(count))
	if !member {
		return
	}
	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `pv_room_settings` WHERE room_id = ? ORDER BY `pv_room_settings`.`room_id` LIMIT ?")).
		WithArgs(roomID, 1).
		WillReturnRows(sqlmock.NewRows([]string{"room_id", "allow_downloads", "is_archived", "updated_at"}).
			AddRow(roomID, true, archived, time.Now()))
}

func TestUpload_PhotoSuccessWithFallbackAnalysis(t *testing.T) {
	store := &fakeStore{}
	n := &fakeNormalizer{out: &transform.Normalized{Data: []byte("jpeg"), ContentType: "image/jpeg", Ext: "jpg"}}
	// 分析服务挂了：上传照常成功，写固定兜底值
	svc, mock, closeDB := newUploadService(t, store, n, &fakeAnalyzer{err: errors.New("service down")})
	defer closeDB()

	expectMemberAndSettings(mock, 7, 3, true, false)

	mock.ExpectExec("INSERT INTO `pv_media`").
		WithArgs(uint64(7), uint64(3), uint8(models.MediaTypePhoto), sqlmock.AnyArg(), nil, "", "", nil, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(42, 1))

	mock.ExpectExec(regexp.QuoteMeta("UPDATE `pv_media` SET `ai_tags`=?,`caption`=?,`mood`=? WHERE id = ?")).
		WithArgs([]byte(`["Photo"]`), "A captured moment.", "Peaceful", uint64(42)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	res, err := svc.Upload(context.Background(), 3, 7, transform.Asset{Kind: transform.KindPhoto, Data: []byte("src")})
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if res.MediaID != 42 || res.Type != models.MediaTypePhoto {
		t.Fatalf("result wrong: %+v", res)
	}
	if res.ThumbnailURL != nil {
		t.Fatalf("photo should have no thumbnail")
	}

	if len(store.calls) != 1 {
		t.Fatalf("expected 1 store call, got %d", len(store.calls))
	}
	call := store.calls[0]
	if call.Bucket != "media" || call.ContentType != "image/jpeg" {
		t.Fatalf("store call wrong: %+v", call)
	}
	// 路径形如 {roomID}/{uploaderID}/{毫秒时间戳}.jpg
	if ok, _ := regexp.MatchString(`^7/3/\d+\.jpg$`, call.Path); !ok {
		t.Fatalf("path format wrong: %s", call.Path)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestUpload_AnalyzerResultPersisted(t *testing.T) {
	store := &fakeStore{}
	n := &fakeNormalizer{out: &transform.Normalized{Data: []byte("jpeg"), ContentType: "image/jpeg", Ext: "jpg"}}
	analyzer := &fakeAnalyzer{analysis: vibe.Analysis{Tags: []string{"Beach", "Sunset"}, Mood: "Joyful", Caption: "Golden hour."}}
	svc, mock, closeDB := newUploadService(t, store, n, analyzer)
	defer closeDB()

	expectMemberAndSettings(mock, 7, 3, true, false)

	mock.ExpectExec("INSERT INTO `pv_media`").
		WillReturnResult(sqlmock.NewResult(43, 1))

	mock.ExpectExec(regexp.QuoteMeta("UPDATE `pv_media` SET `ai_tags`=?,`caption`=?,`mood`=? WHERE id = ?")).
		WithArgs([]byte(`["Beach","Sunset"]`), "Golden hour.", "Joyful", uint64(43)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if _, err := svc.Upload(context.Background(), 3, 7, transform.Asset{Kind: transform.KindPhoto, Data: []byte("src")}); err != nil {
		t.Fatalf("Upload: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestUpload_NotMember(t *testing.T) {
	store := &fakeStore{}
	svc, mock, closeDB := newUploadService(t, store, &fakeNormalizer{}, nil)
	defer closeDB()

	expectMemberAndSettings(mock, 7, 9, false, false)

	_, err := svc.Upload(context.Background(), 9, 7, transform.Asset{Kind: transform.KindPhoto})
	if !errors.Is(err, ErrAuthorizationDenied) {
		t.Fatalf("expected ErrAuthorizationDenied, got %v", err)
	}
	if len(store.calls) != 0 {
		t.Fatalf("must not touch storage when denied")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestUpload_ArchivedRoom(t *testing.T) {
	store := &fakeStore{}
	svc, mock, closeDB := newUploadService(t, store, &fakeNormalizer{}, nil)
	defer closeDB()

	expectMemberAndSettings(mock, 7, 3, true, true)

	_, err := svc.Upload(context.Background(), 3, 7, transform.Asset{Kind: transform.KindPhoto})
	if !errors.Is(err, ErrRoomArchived) {
		t.Fatalf("expected ErrRoomArchived, got %v", err)
	}
	if len(store.calls) != 0 {
		t.Fatalf("archived room must reject before storage")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestUpload_DurationExceeded_ZeroStoreCalls(t *testing.T) {
	store := &fakeStore{}
	n := &fakeNormalizer{err: transform.ErrDurationExceeded}
	svc, mock, closeDB := newUploadService(t, store, n, nil)
	defer closeDB()

	expectMemberAndSettings(mock, 7, 3, true, false)

	_, err := svc.Upload(context.Background(), 3, 7, transform.Asset{Kind: transform.KindVideo, DurationMs: 300_000})
	if !errors.Is(err, transform.ErrDurationExceeded) {
		t.Fatalf("expected ErrDurationExceeded, got %v", err)
	}
	if len(store.calls) != 0 {
		t.Fatalf("rejected video must cause zero storage calls, got %d", len(store.calls))
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

// 存储失败：流水线中止，数据库无任何写入（sqlmock 没有 INSERT 期望即断言）
func TestUpload_StoreFailure_NoRegistration(t *testing.T) {
	store := &fakeStore{failBuckets: map[string]bool{"media": true}}
	n := &fakeNormalizer{out: &transform.Normalized{Data: []byte("jpeg"), ContentType: "image/jpeg", Ext: "jpg"}}
	svc, mock, closeDB := newUploadService(t, store, n, nil)
	defer closeDB()

	expectMemberAndSettings(mock, 7, 3, true, false)

	_, err := svc.Upload(context.Background(), 3, 7, transform.Asset{Kind: transform.KindPhoto, Data: []byte("src")})
	if !errors.Is(err, storage.ErrWriteFailed) {
		t.Fatalf("expected ErrWriteFailed, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

// 缩略图上传失败：视频照常登记，thumbnail_url 为 null
func TestUpload_ThumbFailure_VideoStillRegistered(t *testing.T) {
	store := &fakeStore{failBuckets: map[string]bool{"media-thumbs": true}}
	n := &fakeNormalizer{out: &transform.Normalized{
		Data:        []byte("video-bytes"),
		ContentType: "video/mp4",
		Ext:         "mp4",
		Thumb:       []byte("frame"),
	}}
	svc, mock, closeDB := newUploadService(t, store, n, nil)
	defer closeDB()

	expectMemberAndSettings(mock, 7, 3, true, false)

	mock.ExpectExec("INSERT INTO `pv_media`").
		WithArgs(uint64(7), uint64(3), uint8(models.MediaTypeVideo), sqlmock.AnyArg(), nil, "", "", nil, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(44, 1))

	res, err := svc.Upload(context.Background(), 3, 7, transform.Asset{Kind: transform.KindVideo, Data: []byte("v"), DurationMs: 60_000})
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if res.ThumbnailURL != nil {
		t.Fatalf("thumbnail must stay null after thumb store failure")
	}
	if len(store.calls) != 1 || store.calls[0].Bucket != "media" {
		t.Fatalf("only the media write should have landed: %+v", store.calls)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestUpload_VideoWithThumbnail(t *testing.T) {
	store := &fakeStore{}
	n := &fakeNormalizer{out: &transform.Normalized{
		Data:        []byte("video-bytes"),
		ContentType: "video/quicktime",
		Ext:         "mov",
		Thumb:       []byte("frame"),
	}}
	svc, mock, closeDB := newUploadService(t, store, n, nil)
	defer closeDB()

	expectMemberAndSettings(mock, 7, 3, true, false)

	mock.ExpectExec("INSERT INTO `pv_media`").
		WithArgs(uint64(7), uint64(3), uint8(models.MediaTypeVideo), sqlmock.AnyArg(), sqlmock.AnyArg(), "", "", nil, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(45, 1))

	res, err := svc.Upload(context.Background(), 3, 7, transform.Asset{Kind: transform.KindVideo, Filename: "a.mov", Data: []byte("v"), DurationMs: 60_000})
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if res.ThumbnailURL == nil {
		t.Fatalf("expected thumbnail url")
	}
	if len(store.calls) != 2 {
		t.Fatalf("expected media + thumb writes, got %d", len(store.calls))
	}
	if store.calls[1].Bucket != "media-thumbs" || store.calls[1].ContentType != "image/jpeg" {
		t.Fatalf("thumb write wrong: %+v", store.calls[1])
	}
	// 缩略图路径与主媒体同一时间戳、-thumb 后缀
	if ok, _ := regexp.MatchString(`^7/3/\d+-thumb\.jpg$`, store.calls[1].Path); !ok {
		t.Fatalf("thumb path format wrong: %s", store.calls[1].Path)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

// 存储提交前取消：归一化之后、写存储之前发现 ctx 已取消，零外部写
func TestUpload_CanceledBeforeStore(t *testing.T) {
	store := &fakeStore{}
	n := &fakeNormalizer{out: &transform.Normalized{Data: []byte("jpeg"), ContentType: "image/jpeg", Ext: "jpg"}}
	svc, mock, closeDB := newUploadService(t, store, n, nil)
	defer closeDB()

	expectMemberAndSettings(mock, 7, 3, true, false)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.Upload(ctx, 3, 7, transform.Asset{Kind: transform.KindPhoto, Data: []byte("src")})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if len(store.calls) != 0 {
		t.Fatalf("canceled upload must not write storage")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}
