package store

import (
	"time"

	"github.com/haedeune/fivetodo/internal/model"
)

const seedOwner = "test@test.com"

// dateFromToday returns an instant offset from today by whole days, at the
// given local wall-clock time.
func dateFromToday(dayOffset, hour, minute int) time.Time {
	now := time.Now()
	y, m, d := now.Date()
	return time.Date(y, m, d+dayOffset, hour, minute, 0, 0, time.Local)
}

// seedTasks is the guest/demo baseline: a little history so the calendar
// view has something to show before the first real entry.
func seedTasks() []model.Task {
	return []model.Task{
		{
			ID:        "today-1",
			Title:     "고객 미팅 준비",
			Memo:      "발표 자료 최종 점검하고 질문 리스트 정리하기",
			CreatedAt: dateFromToday(0, 10, 0),
			OwnerTag:  seedOwner,
			SyncState: model.SyncLocal,
		},
		{
			ID:        "d23-1",
			Title:     "프로젝트 기획안 정리",
			Memo:      "핵심 요구사항/범위/리스크 항목까지 문서화",
			CreatedAt: dateFromToday(-1, 9, 20),
			OwnerTag:  seedOwner,
			SyncState: model.SyncLocal,
		},
		{
			ID:        "d23-2",
			Title:     "팀 회의록 작성",
			Memo:      "결정사항과 담당자 액션 아이템 정리 완료",
			IsDone:    true,
			CreatedAt: dateFromToday(-1, 11, 15),
			OwnerTag:  seedOwner,
			SyncState: model.SyncLocal,
		},
		{
			ID:        "d23-4",
			Title:     "자료 백업",
			Memo:      "백업 데이터는 필요 시 오늘 할 일로 다시 지정",
			Archived:  true,
			CreatedAt: dateFromToday(-1, 16, 40),
			OwnerTag:  seedOwner,
			SyncState: model.SyncLocal,
		},
		{
			ID:        "d22-3",
			Title:     "초안 검토",
			Memo:      "2월 22일 초안 1차 검토 완료",
			IsDone:    true,
			CreatedAt: dateFromToday(-2, 11, 20),
			OwnerTag:  seedOwner,
			SyncState: model.SyncLocal,
		},
		{
			ID:        "d22-4",
			Title:     "참고 링크 정리",
			Memo:      "지금은 보류, 필요하면 오늘 할 일로 재지정",
			Archived:  true,
			CreatedAt: dateFromToday(-2, 15, 40),
			OwnerTag:  seedOwner,
			SyncState: model.SyncLocal,
		},
	}
}

// seedDeletedTasks demonstrates the trash view for guests.
func seedDeletedTasks() []model.DeletedTask {
	return []model.DeletedTask{
		{
			Task: model.Task{
				ID:        "deleted-d23",
				Title:     "불필요 스크린샷 정리",
				Memo:      "중복 캡처 파일 정리 후 삭제",
				IsDone:    true,
				CreatedAt: dateFromToday(-1, 18, 15),
				OwnerTag:  seedOwner,
				SyncState: model.SyncLocal,
			},
			DeletedAt: dateFromToday(0, 9, 0),
		},
		{
			Task: model.Task{
				ID:        "deleted-d22",
				Title:     "중복 메모 정리",
				Memo:      "통합 완료 후 기존 메모 삭제",
				IsDone:    true,
				CreatedAt: dateFromToday(-2, 18, 40),
				OwnerTag:  seedOwner,
				SyncState: model.SyncLocal,
			},
			DeletedAt: dateFromToday(-1, 9, 30),
		},
	}
}
