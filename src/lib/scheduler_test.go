package lib

import (
	"testing"

	"github.com/go-co-op/gocron/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateCronJob(t *testing.T) {
	s, err := gocron.NewScheduler()
	require.NoError(t, err)
	NewScheduler(s)
	t.Cleanup(func() {
		s.Shutdown()
		NewScheduler(nil)
	})

	id, err := CreateCronJob("overdue-reservations", "0 8 * * *", func() {})
	require.NoError(t, err)
	assert.NotEmpty(t, *id)
	assert.Len(t, s.Jobs(), 1)
	assert.Equal(t, "overdue-reservations", s.Jobs()[0].Name())

	_, err = CreateCronJob("broken", "not a crontab", func() {})
	assert.Error(t, err)
}
