package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTask_JSONLayout(t *testing.T) {
	due := time.Date(2026, 11, 30, 18, 0, 0, 0, time.UTC)
	tests := []struct {
		name string
		task Task
		want string
	}{
		{
			name: "optional fields omitted",
			task: Task{ID: "t1", Title: "Buy milk", Priority: PriorityLow, Category: "Shopping"},
			want: `{"id":"t1","title":"Buy milk","priority":"low","category":"Shopping","completed":false}`,
		},
		{
			name: "all fields",
			task: Task{ID: "t2", Title: "Hike", Priority: PriorityHigh, Category: "Health", Completed: true,
				DueDate: &due, Weather: &Weather{Temp: 24, Condition: ConditionSunny}},
			want: `{"id":"t2","title":"Hike","priority":"high","category":"Health","completed":true,` +
				`"dueDate":"2026-11-30T18:00:00Z","weather":{"temp":24,"condition":"sunny"}}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := json.Marshal(tt.task)
			require.NoError(t, err)
			assert.JSONEq(t, tt.want, string(data))

			var back Task
			require.NoError(t, json.Unmarshal(data, &back))
			assert.Equal(t, tt.task.ID, back.ID)
			assert.Equal(t, tt.task.Weather, back.Weather)
			if tt.task.DueDate == nil {
				assert.Nil(t, back.DueDate)
			} else {
				require.NotNil(t, back.DueDate)
				assert.True(t, tt.task.DueDate.Equal(*back.DueDate))
			}
		})
	}
}

func TestTask_UnmarshalDueDateVariants(t *testing.T) {
	tests := []struct {
		name    string
		due     string
		wantNil bool
		wantErr bool
	}{
		{name: "empty string", due: `""`, wantNil: true},
		{name: "null", due: `null`, wantNil: true},
		{name: "datetime-local", due: `"2024-05-01T10:30"`},
		{name: "date only", due: `"2024-05-01"`},
		{name: "rfc3339 with offset", due: `"2024-05-01T10:30:00+02:00"`},
		{name: "basic offset", due: `"2024-05-01T10:30:00+0200"`},
		{name: "basic offset without seconds", due: `"2024-05-01T10:30+0200"`},
		{name: "unknown format", due: `"tomorrow"`, wantNil: true},
		{name: "wrong type", due: `42`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var task Task
			err := json.Unmarshal([]byte(`{"id":"1","title":"x","priority":"low","category":"Work","completed":false,"dueDate":`+tt.due+`}`), &task)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "1", task.ID)
			if tt.wantNil {
				assert.Nil(t, task.DueDate)
			} else {
				assert.NotNil(t, task.DueDate)
			}
		})
	}
}

func TestTask_UnparsedDueDateWrittenBack(t *testing.T) {
	var task Task
	require.NoError(t, json.Unmarshal([]byte(`{"id":"1","title":"x","priority":"low","category":"Work","completed":false,"dueDate":"next friday"}`), &task))
	assert.Nil(t, task.DueDate)

	data, err := json.Marshal(task.Clone())
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"1","title":"x","priority":"low","category":"Work","completed":false,"dueDate":"next friday"}`, string(data))
}

func TestTask_BasicOffsetKeepsInstant(t *testing.T) {
	due, err := ParseDueDate("2024-05-01T10:30:00+0200", time.UTC)
	require.NoError(t, err)
	assert.True(t, due.Equal(time.Date(2024, 5, 1, 8, 30, 0, 0, time.UTC)))
}

func TestTask_IsOverdue(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	past, future := now.Add(-time.Second), now.Add(time.Second)

	assert.False(t, Task{}.IsOverdue(now))
	assert.True(t, Task{DueDate: &past}.IsOverdue(now))
	assert.False(t, Task{DueDate: &future}.IsOverdue(now))
}

func TestTask_CloneIsDeep(t *testing.T) {
	due := time.Now()
	orig := Task{ID: "1", DueDate: &due, Weather: &Weather{Temp: 1, Condition: ConditionCloudy}}
	cp := orig.Clone()
	cp.Weather.Temp = 99
	*cp.DueDate = due.Add(time.Hour)

	assert.Equal(t, 1, orig.Weather.Temp)
	assert.True(t, orig.DueDate.Equal(due))
	assert.NotNil(t, CloneTasks(nil))
}

func TestParsePriority(t *testing.T) {
	for raw, want := range map[string]Priority{"low": PriorityLow, " Medium ": PriorityMedium, "HIGH": PriorityHigh} {
		got, ok := ParsePriority(raw)
		assert.True(t, ok, raw)
		assert.Equal(t, want, got)
	}
	_, ok := ParsePriority("urgent")
	assert.False(t, ok)
}

func TestClassifyCondition(t *testing.T) {
	assert.Equal(t, ConditionSunny, ClassifyCondition("Sunny"))
	assert.Equal(t, ConditionSunny, ClassifyCondition("Partly sunny intervals"))
	assert.Equal(t, ConditionCloudy, ClassifyCondition("Overcast"))
	assert.Equal(t, ConditionCloudy, ClassifyCondition(""))
}
