package testutil

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/Bloop15/House-Price-Predictor-Deployment/pkg/compression"
)

// BundleSuite provides a fixture artifact directory and a suite-wide context
// for end-to-end tests
type BundleSuite struct {
	suite.Suite
	ctx       context.Context
	cancel    context.CancelFunc
	dir       string
	startTime time.Time
}

// SetupSuite writes the fixture bundle before all tests in the suite
func (s *BundleSuite) SetupSuite() {
	s.ctx, s.cancel = context.WithTimeout(context.Background(), 5*time.Minute)
	s.startTime = time.Now()

	dir, err := os.MkdirTemp("", "pricer-artifacts-*")
	require.NoError(s.T(), err)
	s.dir = dir

	NewFixture().Write(s.T(), s.dir, compression.None)
	s.T().Logf("fixture bundle written to %s", s.dir)
}

// TearDownSuite removes the fixture directory
func (s *BundleSuite) TearDownSuite() {
	s.cancel()
	if s.dir != "" {
		os.RemoveAll(s.dir)
	}
	s.T().Logf("suite completed in %v", time.Since(s.startTime))
}

// Context returns the suite context
func (s *BundleSuite) Context() context.Context {
	return s.ctx
}

// ArtifactDir returns the fixture directory
func (s *BundleSuite) ArtifactDir() string {
	return s.dir
}

// WriteFile writes content under the suite directory and returns its path
func (s *BundleSuite) WriteFile(name string, content []byte) string {
	path := filepath.Join(s.dir, name)
	require.NoError(s.T(), os.WriteFile(path, content, 0o600))
	return path
}
