package s3

import (
	"context"
	"io"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/sts"
	"github.com/aws/smithy-go"
	"github.com/olusolaa/oneroster-parity/internal/errors"
	"github.com/olusolaa/oneroster-parity/internal/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockS3 struct {
	mock.Mock
}

func (m *mockS3) PutObject(ctx context.Context, params *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	args := m.Called(ctx, params)
	out, _ := args.Get(0).(*s3.PutObjectOutput)
	return out, args.Error(1)
}

type mockSTS struct {
	mock.Mock
}

func (m *mockSTS) GetCallerIdentity(ctx context.Context, params *sts.GetCallerIdentityInput, _ ...func(*sts.Options)) (*sts.GetCallerIdentityOutput, error) {
	args := m.Called(ctx, params)
	out, _ := args.Get(0).(*sts.GetCallerIdentityOutput)
	return out, args.Error(1)
}

func newTestSink(t *testing.T, cfg Config) (*Sink, *mockS3, *mockSTS) {
	t.Helper()
	s3c, stsc := &mockS3{}, &mockSTS{}
	sink, err := New(context.Background(), cfg, log.Discard(), WithClient(s3c), WithSTSClient(stsc))
	require.NoError(t, err)
	return sink, s3c, stsc
}

func TestSink_Key(t *testing.T) {
	sink, _, _ := newTestSink(t, Config{Bucket: "b"})
	assert.Equal(t, "ds5-mssql-orgs.json", sink.Key("ds5-mssql-orgs.json"))

	sink, _, _ = newTestSink(t, Config{Bucket: "b", Prefix: "runs/2024/"})
	assert.Equal(t, "runs/2024/ds5-mssql-orgs.json", sink.Key("ds5-mssql-orgs.json"))
}

func TestSink_Save(t *testing.T) {
	sink, s3c, _ := newTestSink(t, Config{Bucket: "parity", Prefix: "ds5"})

	var body []byte
	s3c.On("PutObject", mock.Anything, mock.MatchedBy(func(in *s3.PutObjectInput) bool {
		return aws.ToString(in.Bucket) == "parity" && aws.ToString(in.Key) == "ds5/ds5-postgres-orgs.json" &&
			aws.ToString(in.ContentType) == "application/json"
	})).Run(func(args mock.Arguments) {
		in := args.Get(1).(*s3.PutObjectInput)
		body, _ = io.ReadAll(in.Body)
	}).Return(&s3.PutObjectOutput{}, nil).Once()

	require.NoError(t, sink.Save(context.Background(), "ds5-postgres-orgs.json", []byte(`{"orgs":[]}`)))
	assert.Equal(t, "{\n  \"orgs\": []\n}", string(body))
	s3c.AssertExpectations(t)
}

func TestSink_SaveKeepsNumbersVerbatim(t *testing.T) {
	sink, s3c, _ := newTestSink(t, Config{Bucket: "parity"})

	var body []byte
	s3c.On("PutObject", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		body, _ = io.ReadAll(args.Get(1).(*s3.PutObjectInput).Body)
	}).Return(&s3.PutObjectOutput{}, nil).Once()

	require.NoError(t, sink.Save(context.Background(), "ds4-mssql-orgs.json", []byte(`{"id":9007199254740993,"score":1.10}`)))
	assert.Equal(t, "{\n  \"id\": 9007199254740993,\n  \"score\": 1.10\n}", string(body))
	s3c.AssertExpectations(t)
}

func TestSink_SaveErrors(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected errors.Code
	}{
		{"access denied", &smithy.GenericAPIError{Code: "AccessDenied", Message: "denied"}, errors.CodeBackendAuth},
		{"missing bucket", &smithy.GenericAPIError{Code: "NoSuchBucket", Message: "gone"}, errors.CodeArtifactWriteError},
		{"other failure", assert.AnError, errors.CodeArtifactWriteError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sink, s3c, _ := newTestSink(t, Config{Bucket: "parity"})
			s3c.On("PutObject", mock.Anything, mock.Anything).Return(nil, tt.err).Once()

			err := sink.Save(context.Background(), "x.json", []byte("{}"))
			require.Error(t, err)
			assert.Equal(t, tt.expected, errors.GetCode(err))
		})
	}
}

func TestSink_Verify(t *testing.T) {
	sink, _, stsc := newTestSink(t, Config{Bucket: "parity"})
	stsc.On("GetCallerIdentity", mock.Anything, mock.Anything).
		Return(&sts.GetCallerIdentityOutput{Account: aws.String("123456789012")}, nil).Once()

	require.NoError(t, sink.Verify(context.Background()))
	require.NoError(t, sink.Verify(context.Background()))
	assert.Equal(t, "123456789012", sink.AccountID())
	stsc.AssertExpectations(t)
}

func TestSink_VerifyDenied(t *testing.T) {
	sink, _, stsc := newTestSink(t, Config{Bucket: "parity"})
	stsc.On("GetCallerIdentity", mock.Anything, mock.Anything).
		Return(nil, &smithy.GenericAPIError{Code: "InvalidClientTokenId", Message: "bad token"}).Once()

	err := sink.Verify(context.Background())
	require.Error(t, err)
	assert.Equal(t, errors.CodeBackendAuth, errors.GetCode(err))
	msg, suggestion, ok := errors.GetUserFacingMessage(err)
	assert.True(t, ok)
	assert.Contains(t, msg, "sts:GetCallerIdentity")
	assert.NotEmpty(t, suggestion)
}

func TestHandleError(t *testing.T) {
	assert.Equal(t, errors.CodeInternal, errors.GetCode(HandleError(context.Background(), "op", "t", nil)))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.Equal(t, errors.CodeTimeout, errors.GetCode(HandleError(ctx, "op", "t", assert.AnError)))
}
