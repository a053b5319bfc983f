package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildDailySpec(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "09:30", want: "0 30 9 * * *"},
		{in: "0:00", want: "0 0 0 * * *"},
		{in: " 23:59 ", want: "0 59 23 * * *"},
		{in: "24:00", wantErr: true},
		{in: "12:60", wantErr: true},
		{in: "noon", wantErr: true},
		{in: "12-30", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := buildDailySpec(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSchedulerService_Schedule(t *testing.T) {
	scheduler := NewSchedulerService(time.UTC)

	_, err := scheduler.ScheduleInterval("report", 0, func() {})
	assert.Error(t, err)
	_, err = scheduler.ScheduleDaily("report", "25:00", func() {})
	assert.Error(t, err)

	_, err = scheduler.ScheduleInterval("sweep", 30*time.Minute, func() {})
	require.NoError(t, err)
	_, err = scheduler.ScheduleDaily("report", "08:00", func() {})
	require.NoError(t, err)
	assert.Equal(t, 2, scheduler.Entries())
}

func TestSchedulerService_RunsJobs(t *testing.T) {
	scheduler := NewSchedulerService(time.UTC)
	ran := make(chan struct{}, 1)
	_, err := scheduler.ScheduleInterval("tick", time.Second, func() {
		select {
		case ran <- struct{}{}:
		default:
		}
	})
	require.NoError(t, err)

	scheduler.Start()
	defer scheduler.Stop(context.Background())

	select {
	case <-ran:
	case <-time.After(3 * time.Second):
		t.Fatal("job did not run")
	}
}
