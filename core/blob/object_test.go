package blob_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"source-resolver/core/blob"
	"source-resolver/core/storage/mocks"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func objectChan(infos ...minio.ObjectInfo) <-chan minio.ObjectInfo {
	ch := make(chan minio.ObjectInfo, len(infos))
	for _, info := range infos {
		ch <- info
	}
	close(ch)
	return ch
}

func TestNewObject(t *testing.T) {
	ctx := context.Background()

	t.Run("MissingBucket", func(t *testing.T) {
		client := new(mocks.Client)
		client.On("BucketExists", mock.Anything, "landing").Return(false, nil)

		_, err := blob.NewObject(ctx, client, "landing", "")
		assert.ErrorIs(t, err, blob.ErrInvalidRoot)
		client.AssertExpectations(t)
	})

	t.Run("Unreachable", func(t *testing.T) {
		client := new(mocks.Client)
		client.On("BucketExists", mock.Anything, "landing").Return(false, errors.New("dial tcp"))

		_, err := blob.NewObject(ctx, client, "landing", "")
		assert.ErrorIs(t, err, blob.ErrInvalidRoot)
	})

	t.Run("NormalisesPrefix", func(t *testing.T) {
		client := new(mocks.Client)
		client.On("BucketExists", mock.Anything, "landing").Return(true, nil)

		store, err := blob.NewObject(ctx, client, "landing", "/raw/2024/")
		require.NoError(t, err)
		assert.Equal(t, "raw/2024/", store.Prefix())
	})
}

func TestObject_ListBlobs(t *testing.T) {
	ctx := context.Background()
	client := new(mocks.Client)
	client.On("BucketExists", mock.Anything, "landing").Return(true, nil)
	client.On("ListObjects", mock.Anything, "landing", minio.ListObjectsOptions{Prefix: "raw/", Recursive: true}).
		Return(objectChan(
			minio.ObjectInfo{Key: "raw/segments/b.csv"},
			minio.ObjectInfo{Key: "raw/segments/"},
			minio.ObjectInfo{Key: "raw/a.csv"},
		))

	store, err := blob.NewObject(ctx, client, "landing", "raw")
	require.NoError(t, err)

	paths, err := store.ListBlobs(ctx)
	require.NoError(t, err)
	require.Len(t, paths, 2)
	assert.Equal(t, "s3://landing/raw/a.csv", paths[0].URI)
	assert.Equal(t, "/raw/a.csv", paths[0].Path)
	assert.Equal(t, "a.csv", paths[0].RelativePath)
	assert.Equal(t, "segments/b.csv", paths[1].RelativePath)
}

func TestObject_ListError(t *testing.T) {
	ctx := context.Background()
	client := new(mocks.Client)
	client.On("BucketExists", mock.Anything, "landing").Return(true, nil)
	client.On("ListObjects", mock.Anything, "landing", mock.Anything).
		Return(objectChan(minio.ObjectInfo{Err: errors.New("access denied")}))

	store, err := blob.NewObject(ctx, client, "landing", "")
	require.NoError(t, err)

	_, err = store.ListBlobs(ctx)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "access denied")
}

func TestObject_OpenSeekableBuffersPlainStreams(t *testing.T) {
	ctx := context.Background()
	client := new(mocks.Client)
	client.On("BucketExists", mock.Anything, "landing").Return(true, nil)
	client.On("GetObject", mock.Anything, "landing", "raw/a.csv", mock.Anything).
		Return(io.NopCloser(bytes.NewBufferString("id\n1\n")), nil)

	store, err := blob.NewObject(ctx, client, "landing", "raw")
	require.NoError(t, err)
	p, err := store.Blob("a.csv")
	require.NoError(t, err)

	s, err := store.OpenSeekable(ctx, p)
	require.NoError(t, err)
	defer s.Close()

	_, err = s.Seek(3, io.SeekStart)
	require.NoError(t, err)
	rest, err := io.ReadAll(s)
	require.NoError(t, err)
	assert.Equal(t, "1\n", string(rest))
}

func TestObject_OpenWriter(t *testing.T) {
	ctx := context.Background()
	client := new(mocks.Client)
	client.On("BucketExists", mock.Anything, "landing").Return(true, nil)

	var uploaded []byte
	client.On("PutObject", mock.Anything, "landing", "out/cities.csv", mock.Anything, int64(-1), mock.Anything).
		Run(func(args mock.Arguments) {
			uploaded, _ = io.ReadAll(args.Get(3).(io.Reader))
		}).
		Return(minio.UploadInfo{}, nil)

	store, err := blob.NewObject(ctx, client, "landing", "")
	require.NoError(t, err)
	p, err := store.Blob("out/cities.csv")
	require.NoError(t, err)

	w, err := store.OpenWriter(ctx, p)
	require.NoError(t, err)
	_, err = io.WriteString(w, "id,name\n")
	require.NoError(t, err)
	require.NoError(t, w.Close())
	assert.NoError(t, w.Close())

	assert.Equal(t, "id,name\n", string(uploaded))
	client.AssertExpectations(t)
}

func TestObject_UploadFailure(t *testing.T) {
	ctx := context.Background()
	client := new(mocks.Client)
	client.On("BucketExists", mock.Anything, "landing").Return(true, nil)
	client.On("PutObject", mock.Anything, "landing", "x.csv", mock.Anything, int64(-1), mock.Anything).
		Run(func(args mock.Arguments) {
			_, _ = io.ReadAll(args.Get(3).(io.Reader))
		}).
		Return(minio.UploadInfo{}, errors.New("quota exceeded"))

	store, err := blob.NewObject(ctx, client, "landing", "")
	require.NoError(t, err)
	p, _ := store.Blob("x.csv")

	w, err := store.OpenWriter(ctx, p)
	require.NoError(t, err)
	_, _ = io.WriteString(w, "data")
	err = w.Close()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "quota exceeded")
}

func TestObject_Remove(t *testing.T) {
	ctx := context.Background()
	client := new(mocks.Client)
	client.On("BucketExists", mock.Anything, "landing").Return(true, nil)
	client.On("RemoveObject", mock.Anything, "landing", "raw/cities.csv", mock.Anything).Return(nil).Once()
	client.On("RemoveObject", mock.Anything, "landing", "raw/gone.csv", mock.Anything).Return(errors.New("denied")).Once()

	store, err := blob.NewObject(ctx, client, "landing", "raw")
	require.NoError(t, err)

	p, err := store.Blob("cities.csv")
	require.NoError(t, err)
	assert.NoError(t, store.Remove(ctx, p))

	gone, err := store.Blob("gone.csv")
	require.NoError(t, err)
	assert.ErrorContains(t, store.Remove(ctx, gone), "denied")

	require.NoError(t, store.Close())
	assert.ErrorIs(t, store.Remove(ctx, p), blob.ErrClosed)
	client.AssertExpectations(t)
}
