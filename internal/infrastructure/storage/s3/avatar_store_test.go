package s3

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/require"

	"github.com/riskibarqy/tennis-club/internal/platform/id"
	"github.com/riskibarqy/tennis-club/internal/platform/logging"
	"github.com/riskibarqy/tennis-club/internal/platform/resilience"
	"github.com/riskibarqy/tennis-club/internal/usecase"
)

type fakePutter struct {
	calls []*awss3.PutObjectInput
	body  string
	err   error
}

func (f *fakePutter) PutObject(_ context.Context, in *awss3.PutObjectInput, _ ...func(*awss3.Options)) (*awss3.PutObjectOutput, error) {
	f.calls = append(f.calls, in)
	if in.Body != nil {
		raw, _ := io.ReadAll(in.Body)
		f.body = string(raw)
	}
	if f.err != nil {
		return nil, f.err
	}
	return &awss3.PutObjectOutput{}, nil
}

func avatar(userName, body string) usecase.AvatarObject {
	return usecase.AvatarObject{
		UserName:    userName,
		ContentType: "image/png",
		Extension:   "png",
		Size:        int64(len(body)),
		Body:        strings.NewReader(body),
	}
}

func TestAvatarStore_PutAvatar(t *testing.T) {
	putter := &fakePutter{}
	store := newAvatarStore(putter, Config{
		Bucket:        "club-assets",
		Region:        "ap-southeast-1",
		PublicBaseURL: "https://cdn.club.test/",
	}, id.Static("0f8c"), logging.NewNop())

	url, err := store.PutAvatar(context.Background(), avatar("Budi Santoso", "png-bytes"))
	require.NoError(t, err)
	require.Equal(t, "https://cdn.club.test/avatars/budi-santoso-0f8c.png", url)

	require.Len(t, putter.calls, 1)
	in := putter.calls[0]
	require.Equal(t, "club-assets", aws.ToString(in.Bucket))
	require.Equal(t, "avatars/budi-santoso-0f8c.png", aws.ToString(in.Key))
	require.Equal(t, "image/png", aws.ToString(in.ContentType))
	require.Equal(t, int64(9), aws.ToInt64(in.ContentLength))
	require.Equal(t, "png-bytes", putter.body)
}

func TestAvatarStore_RejectsShortBody(t *testing.T) {
	putter := &fakePutter{}
	store := newAvatarStore(putter, Config{Bucket: "b", Region: "r"}, id.Static("x"), logging.NewNop())

	obj := avatar("sari", "abc")
	obj.Size = 10
	_, err := store.PutAvatar(context.Background(), obj)
	require.ErrorIs(t, err, usecase.ErrInvalidInput)
	require.Empty(t, putter.calls)
}

func TestAvatarStore_CircuitOpensAfterFailures(t *testing.T) {
	putter := &fakePutter{err: errors.New("connection refused")}
	var opened []string
	store := newAvatarStore(putter, Config{
		Bucket: "b",
		Region: "r",
		Circuit: resilience.CircuitBreakerConfig{
			Enabled:          true,
			FailureThreshold: 2,
			OpenTimeout:      time.Minute,
			HalfOpenMaxReq:   1,
			OnStateChange: func(name string, _, to resilience.CircuitState) {
				if to == resilience.CircuitStateOpen {
					opened = append(opened, name)
				}
			},
		},
	}, id.Static("x"), logging.NewNop())

	for i := 0; i < 2; i++ {
		_, err := store.PutAvatar(context.Background(), avatar("sari", "abc"))
		require.Error(t, err)
	}

	_, err := store.PutAvatar(context.Background(), avatar("sari", "abc"))
	require.ErrorIs(t, err, resilience.ErrCircuitOpen)
	require.Contains(t, err.Error(), "avatar-store")
	require.Len(t, putter.calls, 2)
	require.Equal(t, []string{"avatar-store"}, opened)
}

func TestPublicBaseURL(t *testing.T) {
	cases := []struct {
		name string
		cfg  Config
		want string
	}{
		{name: "explicit base", cfg: Config{Bucket: "b", PublicBaseURL: "https://cdn.test/"}, want: "https://cdn.test"},
		{name: "custom endpoint", cfg: Config{Bucket: "b", Endpoint: "http://minio:9000/"}, want: "http://minio:9000/b"},
		{name: "aws default", cfg: Config{Bucket: "b", Region: "eu-west-1"}, want: "https://b.s3.eu-west-1.amazonaws.com"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, publicBaseURL(tc.cfg))
		})
	}
}
