package db

import (
	"context"
	"testing"

	"meeting-bot/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustMeeting(t *testing.T, r *Repo) *models.Meeting {
	t.Helper()
	m := &models.Meeting{Topic: "планёрка", Date: "01.12.2026", Time: "10:00", Place: "зал 3"}
	require.NoError(t, r.CreateMeeting(context.Background(), m))
	return m
}

func TestBatchImportInvitees(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()
	m := mustMeeting(t, r)

	res, err := r.BatchImportInvitees(ctx, m.ID, []ImportRow{
		{FullName: "Иванов Иван", Email: "Ivanov@Example.RU", Phone: "+7 (999) 123-45-67"},
		{FullName: "Иванов Иван", Email: "ivanov@example.ru"}, // 同一 email 规范化后重复
		{FullName: "Петров Пётр", Phone: "89991112233"},       // 只有电话也收
		{FullName: "", Email: "noname@example.ru"},            // 没姓名丢弃
		{FullName: "Сидоров", Email: "not-an-email"},          // email 格式不对丢弃
		{FullName: "Смирнова Анна"},                           // 没有任何联系方式丢弃
	})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Added)
	assert.Equal(t, 4, res.Skipped)

	list, err := r.InviteesForMeeting(ctx, m.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "ivanov@example.ru", *list[0].Email)
	assert.Equal(t, "79991234567", *list[0].Phone)
	assert.Nil(t, list[1].Email)
	assert.Equal(t, "79991112233", *list[1].Phone)

	// 再导一遍同一批，全部按重复跳过
	res, err = r.BatchImportInvitees(ctx, m.ID, []ImportRow{
		{FullName: "Иванов Иван", Email: "ivanov@example.ru"},
	})
	require.NoError(t, err)
	assert.Equal(t, 0, res.Added)
	assert.Equal(t, 1, res.Skipped)
}

func TestCopyInviteesToMeeting_ResetsState(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()
	old := mustMeeting(t, r)

	_, err := r.BatchImportInvitees(ctx, old.ID, []ImportRow{
		{FullName: "Иванов Иван", Email: "ivanov@example.ru"},
	})
	require.NoError(t, err)

	// 老会议里已投票、渠道已发
	ok, err := r.UpdateInviteeAnswer(ctx, old.ID, "ivanov@example.ru", "да", "", "")
	require.NoError(t, err)
	require.True(t, ok)
	src, err := r.InviteesForMeeting(ctx, old.ID)
	require.NoError(t, err)
	require.NoError(t, r.SetChannelStatus(ctx, src[0].ID, ChannelChat, models.StatusSent))

	next := mustMeeting(t, r)
	copied, err := r.CopyInviteesToMeeting(ctx, old.ID, next.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, copied)

	fresh, err := r.InviteesForMeeting(ctx, next.ID)
	require.NoError(t, err)
	require.Len(t, fresh, 1)
	assert.Equal(t, "ivanov@example.ru", *fresh[0].Email)
	assert.Nil(t, fresh[0].Answer)
	assert.Nil(t, fresh[0].ChatStatus)
	assert.Nil(t, fresh[0].EmailStatus)
	assert.Nil(t, fresh[0].SMSStatus)
}

func TestSetChannelStatus_Monotonic(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()
	m := mustMeeting(t, r)
	_, err := r.BatchImportInvitees(ctx, m.ID, []ImportRow{
		{FullName: "Иванов Иван", Email: "ivanov@example.ru"},
	})
	require.NoError(t, err)
	list, err := r.InviteesForMeeting(ctx, m.ID)
	require.NoError(t, err)
	id := list[0].ID

	require.NoError(t, r.SetChannelStatus(ctx, id, ChannelEmail, models.StatusSent))
	// 终态不许改写
	require.NoError(t, r.SetChannelStatus(ctx, id, ChannelEmail, models.StatusError))

	list, err = r.InviteesForMeeting(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusSent, *list[0].EmailStatus)
	assert.Nil(t, list[0].ChatStatus)

	assert.Error(t, r.SetChannelStatus(ctx, id, "answer", models.StatusSent))
	assert.Error(t, r.SetChannelStatus(ctx, id, ChannelChat, "done"))
}

func TestUpdateInviteeAnswer_BackfillsContact(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()
	m := mustMeeting(t, r)
	_, err := r.BatchImportInvitees(ctx, m.ID, []ImportRow{
		{FullName: "Иванов Иван", Email: "ivanov@example.ru"},
	})
	require.NoError(t, err)

	ok, err := r.UpdateInviteeAnswer(ctx, m.ID, "Ivanov@Example.RU", "нет", "Петров Пётр", "89991234567")
	require.NoError(t, err)
	assert.True(t, ok)

	list, err := r.InviteesForMeeting(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, "нет", *list[0].Answer)
	// 电话原来缺，补上；姓名已有，不覆盖
	assert.Equal(t, "79991234567", *list[0].Phone)
	assert.Equal(t, "Иванов Иван", list[0].FullName)

	ok, err = r.UpdateInviteeAnswer(ctx, m.ID, "stranger@example.ru", "да", "", "")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestUpdateInviteeContact(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()
	m := mustMeeting(t, r)
	_, err := r.BatchImportInvitees(ctx, m.ID, []ImportRow{
		{FullName: "Иванов Иван", Email: "ivanov@example.ru"},
	})
	require.NoError(t, err)

	found, err := r.UpdateInviteeContact(ctx, m.ID, "Ivanov@Example.RU", "Петров Пётр", "+7 999 123-45-67")
	require.NoError(t, err)
	assert.True(t, found)

	list, err := r.InviteesForMeeting(ctx, m.ID)
	require.NoError(t, err)
	// 电话缺失被补上；已有姓名不覆盖；answer 不动
	assert.Equal(t, "79991234567", *list[0].Phone)
	assert.Equal(t, "Иванов Иван", list[0].FullName)
	assert.Nil(t, list[0].Answer)

	// 二次同步已有值保持不变
	found, err = r.UpdateInviteeContact(ctx, m.ID, "ivanov@example.ru", "Другой", "79995556677")
	require.NoError(t, err)
	assert.True(t, found)
	list, err = r.InviteesForMeeting(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, "79991234567", *list[0].Phone)

	found, err = r.UpdateInviteeContact(ctx, m.ID, "stranger@example.ru", "", "")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestVotedInvitees(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()
	m := mustMeeting(t, r)
	_, err := r.BatchImportInvitees(ctx, m.ID, []ImportRow{
		{FullName: "Иванов Иван", Email: "ivanov@example.ru"},
		{FullName: "Петров Пётр", Email: "petrov@example.ru"},
	})
	require.NoError(t, err)
	_, err = r.UpdateInviteeAnswer(ctx, m.ID, "petrov@example.ru", "да", "", "")
	require.NoError(t, err)

	voted, err := r.VotedInvitees(ctx, m.ID)
	require.NoError(t, err)
	require.Len(t, voted, 1)
	assert.Equal(t, "petrov@example.ru", *voted[0].Email)
	assert.Equal(t, "да", *voted[0].Answer)
}
