package testutil

import (
	"context"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/ajitpratap0/prefabpool/pkg/pool"
	"github.com/ajitpratap0/prefabpool/pkg/scene"
)

// SceneSuite gives every test a fresh scene and registry. Embed it in a
// testify suite and set Options before the suite runs to configure the
// registry.
type SceneSuite struct {
	suite.Suite

	// Options are passed to every registry the suite builds.
	Options []pool.Option

	Scene    *scene.Scene
	Registry *pool.Registry

	ctx       context.Context
	cancel    context.CancelFunc
	startTime time.Time
}

// SetupSuite runs before all tests in the suite
func (s *SceneSuite) SetupSuite() {
	s.startTime = time.Now()
}

// TearDownSuite runs after all tests in the suite
func (s *SceneSuite) TearDownSuite() {
	s.T().Logf("suite completed in %v", time.Since(s.startTime))
}

// SetupTest builds the scene and registry for the next test.
func (s *SceneSuite) SetupTest() {
	s.ctx, s.cancel = context.WithTimeout(context.Background(), 30*time.Second)
	s.Scene, s.Registry = NewSceneRegistry(s.T(), s.T().Name(), s.Options...)
}

// TearDownTest cancels the test context.
func (s *SceneSuite) TearDownTest() {
	s.cancel()
}

// Context returns the per-test context
func (s *SceneSuite) Context() context.Context {
	return s.ctx
}

// Register registers a behaviour-less template under name.
func (s *SceneSuite) Register(name string) *pool.Prefab {
	return RegisterTemplate(s.T(), s.Registry, name)
}
