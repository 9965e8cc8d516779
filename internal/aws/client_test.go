package aws

import (
	"context"
	"errors"
	"sync"
	"testing"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingLoader struct {
	mu    sync.Mutex
	calls map[string]int
	err   error
}

func (l *countingLoader) load(ctx context.Context, profile, region string) (awssdk.Config, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.calls == nil {
		l.calls = make(map[string]int)
	}
	l.calls[region]++
	if l.err != nil {
		return awssdk.Config{}, l.err
	}
	return awssdk.Config{Region: region}, nil
}

func TestRegistry_ReusesClientPerRegion(t *testing.T) {
	loader := &countingLoader{}
	r := NewRegistryWithLoader("dev", nil, loader.load)
	ctx := context.Background()

	a, err := r.Logs(ctx, "us-east-1")
	require.NoError(t, err)
	b, err := r.Logs(ctx, "us-east-1")
	require.NoError(t, err)
	c, err := r.Logs(ctx, "eu-west-1")
	require.NoError(t, err)

	assert.Same(t, a, b)
	assert.NotSame(t, a, c)
	assert.Equal(t, 1, loader.calls["us-east-1"])
	assert.Equal(t, 1, loader.calls["eu-west-1"])
}

func TestRegistry_ConcurrentCallers(t *testing.T) {
	loader := &countingLoader{}
	r := NewRegistryWithLoader("", nil, loader.load)

	var wg sync.WaitGroup
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := r.Logs(context.Background(), "ap-south-1")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, loader.calls["ap-south-1"])
}

func TestRegistry_LoadErrorNotCached(t *testing.T) {
	loader := &countingLoader{err: errors.New("no credentials")}
	r := NewRegistryWithLoader("", nil, loader.load)

	_, err := r.Logs(context.Background(), "us-east-1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no credentials")

	loader.err = nil
	_, err = r.Logs(context.Background(), "us-east-1")
	require.NoError(t, err)
	assert.Equal(t, 2, loader.calls["us-east-1"])
}

func TestRegistry_ConfigShared(t *testing.T) {
	loader := &countingLoader{}
	r := NewRegistryWithLoader("", nil, loader.load)

	cfg, err := r.Config(context.Background(), "us-west-2")
	require.NoError(t, err)
	assert.Equal(t, "us-west-2", cfg.Region)

	_, err = r.Logs(context.Background(), "us-west-2")
	require.NoError(t, err)
	assert.Equal(t, 1, loader.calls["us-west-2"])
}

type mockSTS struct {
	out *sts.GetCallerIdentityOutput
	err error
}

func (m *mockSTS) GetCallerIdentity(ctx context.Context, params *sts.GetCallerIdentityInput, optFns ...func(*sts.Options)) (*sts.GetCallerIdentityOutput, error) {
	return m.out, m.err
}

func TestAccountID(t *testing.T) {
	id := AccountID(context.Background(), &mockSTS{out: &sts.GetCallerIdentityOutput{Account: awssdk.String("123456789012")}})
	assert.Equal(t, "123456789012", id)

	id = AccountID(context.Background(), &mockSTS{err: errors.New("expired token")})
	assert.Equal(t, "", id)
}
