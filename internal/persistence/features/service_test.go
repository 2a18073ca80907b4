package features

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"featurepipe/pkg/feature"
)

func TestNewServiceWithoutConn(t *testing.T) {
	require.Nil(t, NewService(nil))
}

func TestNilServiceIsInert(t *testing.T) {
	var s *Service
	require.NoError(t, s.EnsureSchema(context.Background()))
	require.NoError(t, s.SaveRows(context.Background(), []feature.Row{{}}))
}

func TestNullableMapsNaNToNull(t *testing.T) {
	require.Nil(t, nullable(math.NaN()))
	require.Equal(t, 61.5, nullable(61.5))
}
