package salesforce

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

// mockClient implements Client for testing.
type mockClient struct {
	queryFn     func(ctx context.Context, soql string, out any) error
	updateOneFn func(ctx context.Context, sObjectName string, id string, fields map[string]any) error
}

func (m *mockClient) Query(ctx context.Context, soql string, out any) error {
	if m.queryFn != nil {
		return m.queryFn(ctx, soql, out)
	}
	return nil
}

func (m *mockClient) UpdateOne(ctx context.Context, sObjectName string, id string, fields map[string]any) error {
	if m.updateOneFn != nil {
		return m.updateOneFn(ctx, sObjectName, id, fields)
	}
	return nil
}

func TestMockClientSatisfiesInterface(t *testing.T) {
	t.Parallel()
	var _ Client = (*mockClient)(nil)
}

func TestWithRateLimit(t *testing.T) {
	c := &sfClient{}
	WithRateLimit(2.5)(c)
	require.NotNil(t, c.limiter)
	assert.Equal(t, rate.Limit(2.5), c.limiter.Limit())
	assert.Equal(t, 2, c.limiter.Burst())
}

func TestWithRateLimitZeroDisables(t *testing.T) {
	c := &sfClient{}
	WithRateLimit(0)(c)
	assert.Nil(t, c.limiter)
}

func TestWaitRespectsContext(t *testing.T) {
	c := &sfClient{limiter: rate.NewLimiter(rate.Every(time.Hour), 1)}
	require.NoError(t, c.limiter.Wait(context.Background())) // burn the burst token

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	assert.Error(t, c.wait(ctx))
}

func TestWaitNilLimiter(t *testing.T) {
	c := &sfClient{}
	assert.NoError(t, c.wait(context.Background()))
}
