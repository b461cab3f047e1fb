package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, EnvDevelopment, cfg.Env)
	assert.Equal(t, 15, cfg.Scheduler.DefaultTeachingWeeks)
	assert.Equal(t, 2*time.Minute, cfg.Scheduler.BatchTimeout)
	assert.False(t, cfg.Scheduler.StrictClassification)
	assert.Equal(t, 10, cfg.Workload.AcademicYearMonths)
	assert.Equal(t, 50*time.Minute, cfg.Calendar.PeriodLength)
}

func TestLoadReadsEnvironment(t *testing.T) {
	t.Setenv("SCHEDULER_DEFAULT_TEACHING_WEEKS", "18")
	t.Setenv("SCHEDULER_BATCH_TIMEOUT", "45s")
	t.Setenv("SCHEDULER_STRICT_CLASSIFICATION", "true")
	t.Setenv("WORKLOAD_ACADEMIC_YEAR_MONTHS", "12")
	t.Setenv("ALLOWED_ORIGINS", "http://a.test, http://b.test ,")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 18, cfg.Scheduler.DefaultTeachingWeeks)
	assert.Equal(t, 45*time.Second, cfg.Scheduler.BatchTimeout)
	assert.True(t, cfg.Scheduler.StrictClassification)
	assert.Equal(t, 12, cfg.Workload.AcademicYearMonths)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORS.AllowedOrigins)
}

func TestParseDurationFallsBack(t *testing.T) {
	assert.Equal(t, time.Minute, parseDuration("", time.Minute))
	assert.Equal(t, time.Minute, parseDuration("soon", time.Minute))
	assert.Equal(t, 3*time.Second, parseDuration("3s", time.Minute))
}
