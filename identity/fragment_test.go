package identity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func eventWithSender(sender map[string]any) Event {
	return Event{
		SenderID:    10,
		GroupID:     20,
		WorkspaceID: 30,
		Payload: map[string]any{
			"messages": []any{map[string]any{"sender": sender}},
		},
	}
}

func TestFragmentFromEvent_AliasSpellings(t *testing.T) {
	// camelCase 别名也要认
	f, ok := FragmentFromEvent(eventWithSender(map[string]any{
		"lastName":   "Иванов",
		"firstName":  "Иван",
		"middleName": "Иванович",
		"email":      "ivanov@example.ru",
		"jobTitle":   "инженер",
	}))
	assert.True(t, ok)
	assert.Equal(t, "Иванов", f.LastName)
	assert.Equal(t, "Иван", f.FirstName)
	assert.Equal(t, "Иванович", f.MiddleName)
	assert.Equal(t, "ivanov@example.ru", f.Email)
	assert.Equal(t, "инженер", f.JobTitle)

	f, ok = FragmentFromEvent(eventWithSender(map[string]any{
		"surname": "Петров",
		"name":    "Пётр",
		"login":   "petrov",
	}))
	assert.True(t, ok)
	assert.Equal(t, "Петров", f.LastName)
	assert.Equal(t, "Пётр", f.FirstName)
	assert.Equal(t, "petrov", f.Username)
}

func TestFragmentFromEvent_DigitJobTitleDropped(t *testing.T) {
	// 纯数字是内部岗位编号，不是职务
	f, _ := FragmentFromEvent(eventWithSender(map[string]any{
		"last_name": "Иванов",
		"job_title": "113",
	}))
	assert.Equal(t, "", f.JobTitle)
}

func TestFragmentFromEvent_RootFallback(t *testing.T) {
	f, ok := FragmentFromEvent(Event{Payload: map[string]any{
		"user": map[string]any{"email": "root@example.ru"},
	}})
	assert.True(t, ok)
	assert.Equal(t, "root@example.ru", f.Email)

	_, ok = FragmentFromEvent(Event{})
	assert.False(t, ok)

	_, ok = FragmentFromEvent(Event{Payload: map[string]any{"messages": []any{}}})
	assert.False(t, ok)
}

func TestMerge_InlineWins(t *testing.T) {
	inline := Fragment{Email: "fresh@example.ru", Phone: ""}
	remote := Fragment{Email: "stale@example.ru", Phone: "+79991234567", LastName: "Иванов"}
	m := Merge(inline, remote)
	assert.Equal(t, "fresh@example.ru", m.Email)   // inline 非空优先
	assert.Equal(t, "+79991234567", m.Phone)       // inline 空则取 remote
	assert.Equal(t, "Иванов", m.LastName)
	assert.Equal(t, "", m.MiddleName)
}

func TestFullName(t *testing.T) {
	assert.Equal(t, "Иванов Иван Иванович", Fragment{LastName: "Иванов", FirstName: "Иван", MiddleName: "Иванович"}.FullName())
	assert.Equal(t, "Иванов", Fragment{LastName: "Иванов"}.FullName())
	assert.Equal(t, "—", Fragment{}.FullName())
}
