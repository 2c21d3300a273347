package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/mihintamu/scholarai-server/config"
	"github.com/mihintamu/scholarai-server/internal/model/dto"
	"github.com/mihintamu/scholarai-server/internal/repository"
	"github.com/mihintamu/scholarai-server/internal/testutil"
)

// fakeFileStore 内存文件存储
type fakeFileStore struct {
	uploads  int
	deletes  []string
	failNext bool
}

func (f *fakeFileStore) UploadKnowledgeFile(data []byte, ext string) (string, error) {
	if f.failNext {
		return "", errors.New("upload failed")
	}
	f.uploads++
	return "https://bucket.example.com/1700000000000_abc" + ext, nil
}

func (f *fakeFileStore) Delete(objectKey string) error {
	f.deletes = append(f.deletes, objectKey)
	return nil
}

func (f *fakeFileStore) ExtractObjectKey(url string) string {
	return url[len("https://bucket.example.com/"):]
}

// fakeExtractor 假的大模型文档抽取
type fakeExtractor struct {
	text string
	err  error
}

func (f *fakeExtractor) ExtractText(_ context.Context, _ string, _ []byte) (string, error) {
	return f.text, f.err
}

func setupKnowledgeService(t *testing.T, db *gorm.DB, store *fakeFileStore) *KnowledgeService {
	t.Helper()

	knowledgeRepo := repository.NewKnowledgeRepository(db)
	subjectRepo := repository.NewSubjectRepository(db)
	parser := NewParserService(nil, &fakeExtractor{text: "extracted text"})
	uploadCfg := &config.UploadConfig{
		MaxSize:           10 << 20,
		AllowedExtensions: []string{".pdf", ".txt", ".doc", ".docx", ".xls", ".xlsx"},
	}

	return NewKnowledgeService(knowledgeRepo, subjectRepo, store, parser, uploadCfg)
}

func TestKnowledgeService_Save_SubjectEntry(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	svc := setupKnowledgeService(t, db, &fakeFileStore{})
	subject := testutil.TestSubject(t, db, "Mathematics")

	info, err := svc.Save(&dto.SaveKnowledgeRequest{
		SubjectID: &subject.ID,
		Content:   "Calculus reference notes",
	})
	require.NoError(t, err)
	assert.Equal(t, "Calculus reference notes", info.Content)
	assert.False(t, info.IsCommon)

	// 读取后带科目名
	got, err := svc.Get(info.ID)
	require.NoError(t, err)
	assert.Equal(t, "Mathematics", got.SubjectName)
}

func TestKnowledgeService_Save_CommonEntry(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	svc := setupKnowledgeService(t, db, &fakeFileStore{})
	subject := testutil.TestSubject(t, db, "Mathematics")

	// 通用条目忽略传入的科目
	info, err := svc.Save(&dto.SaveKnowledgeRequest{
		SubjectID: &subject.ID,
		Content:   "Global style guide",
		IsCommon:  true,
	})
	require.NoError(t, err)
	assert.True(t, info.IsCommon)
	assert.Nil(t, info.SubjectID)
	assert.Equal(t, "Common Knowledge Base", info.SubjectName)
}

func TestKnowledgeService_List_Filter(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	svc := setupKnowledgeService(t, db, &fakeFileStore{})
	math := testutil.TestSubject(t, db, "Mathematics")
	physics := testutil.TestSubject(t, db, "Physics")

	testutil.TestKnowledge(t, db, testutil.WithSubjectID(math.ID), testutil.WithContent("calculus notes"))
	testutil.TestKnowledge(t, db, testutil.WithSubjectID(physics.ID), testutil.WithContent("mechanics notes"))
	testutil.TestKnowledge(t, db, testutil.WithCommon(), testutil.WithContent("citation style guide"))

	// 不带条件返回全部
	all, err := svc.List(nil)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	// 按科目过滤
	byMath, err := svc.List(&dto.KnowledgeFilter{SubjectID: &math.ID})
	require.NoError(t, err)
	require.Len(t, byMath, 1)
	assert.Equal(t, "calculus notes", byMath[0].Content)

	// 只看通用条目
	common, err := svc.List(&dto.KnowledgeFilter{CommonOnly: true})
	require.NoError(t, err)
	require.Len(t, common, 1)
	assert.True(t, common[0].IsCommon)

	// 正文子串搜索，大小写不敏感
	byQuery, err := svc.List(&dto.KnowledgeFilter{Query: "CALCULUS"})
	require.NoError(t, err)
	assert.Len(t, byQuery, 1)

	// 科目名也参与搜索
	byName, err := svc.List(&dto.KnowledgeFilter{Query: "physics"})
	require.NoError(t, err)
	assert.Len(t, byName, 1)
}

func TestKnowledgeService_Save_Validation(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	svc := setupKnowledgeService(t, db, &fakeFileStore{})
	subject := testutil.TestSubject(t, db, "Mathematics")

	// 正文和文件都为空
	_, err := svc.Save(&dto.SaveKnowledgeRequest{SubjectID: &subject.ID})
	assert.ErrorIs(t, err, ErrEmptyKnowledge)

	// 非通用条目缺科目
	_, err = svc.Save(&dto.SaveKnowledgeRequest{Content: "notes"})
	assert.ErrorIs(t, err, ErrSubjectRequired)

	// 科目不存在
	missing := int64(99999)
	_, err = svc.Save(&dto.SaveKnowledgeRequest{SubjectID: &missing, Content: "notes"})
	assert.ErrorIs(t, err, ErrSubjectNotFound)

	// 只有文件没有正文是允许的
	_, err = svc.Save(&dto.SaveKnowledgeRequest{
		SubjectID: &subject.ID,
		FileURL:   "https://bucket.example.com/file.pdf",
		FileType:  "pdf",
	})
	assert.NoError(t, err)
}

func TestKnowledgeService_Update_SwitchToCommon(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	svc := setupKnowledgeService(t, db, &fakeFileStore{})
	subject := testutil.TestSubject(t, db, "Mathematics")

	info, err := svc.Save(&dto.SaveKnowledgeRequest{
		SubjectID: &subject.ID,
		Content:   "notes",
	})
	require.NoError(t, err)

	updated, err := svc.Update(info.ID, &dto.SaveKnowledgeRequest{
		Content:  "notes v2",
		IsCommon: true,
	})
	require.NoError(t, err)
	assert.True(t, updated.IsCommon)
	assert.Nil(t, updated.SubjectID)
	assert.Equal(t, "notes v2", updated.Content)
}

func TestKnowledgeService_Delete_RemovesFile(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	store := &fakeFileStore{}
	svc := setupKnowledgeService(t, db, store)
	subject := testutil.TestSubject(t, db, "Mathematics")

	info, err := svc.Save(&dto.SaveKnowledgeRequest{
		SubjectID: &subject.ID,
		Content:   "notes",
		FileURL:   "https://bucket.example.com/1700000000000_abc.pdf",
		FileType:  "pdf",
	})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(info.ID))

	_, err = svc.Get(info.ID)
	assert.ErrorIs(t, err, ErrKnowledgeNotFound)

	// 关联文件一并删除
	require.Len(t, store.deletes, 1)
	assert.Equal(t, "1700000000000_abc.pdf", store.deletes[0])
}

func TestKnowledgeService_Upload_PrefillsText(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	store := &fakeFileStore{}
	svc := setupKnowledgeService(t, db, store)

	resp, err := svc.Upload(context.Background(), "notes.txt", []byte("plain text body"))
	require.NoError(t, err)
	assert.Equal(t, 1, store.uploads)
	assert.Equal(t, "txt", resp.FileType)
	assert.Equal(t, "plain text body", resp.ExtractedText)
	assert.Empty(t, resp.ParseError)
}

func TestKnowledgeService_Upload_UnsupportedParseKeepsFile(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	store := &fakeFileStore{}
	svc := setupKnowledgeService(t, db, store)

	// pdf 内容损坏时解析失败，但上传结果保留
	resp, err := svc.Upload(context.Background(), "broken.pdf", []byte("not really a pdf"))
	require.NoError(t, err)
	assert.Equal(t, 1, store.uploads)
	assert.NotEmpty(t, resp.FileURL)
	assert.Empty(t, resp.ExtractedText)
	assert.NotEmpty(t, resp.ParseError)
}

func TestKnowledgeService_Upload_Rejections(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	store := &fakeFileStore{}
	svc := setupKnowledgeService(t, db, store)

	_, err := svc.Upload(context.Background(), "image.png", []byte("data"))
	assert.ErrorIs(t, err, ErrExtNotAllowed)

	big := make([]byte, (10<<20)+1)
	_, err = svc.Upload(context.Background(), "big.pdf", big)
	assert.ErrorIs(t, err, ErrFileTooLarge)

	assert.Equal(t, 0, store.uploads)
}
