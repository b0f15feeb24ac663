package domain

import "time"

type RoutineSlot struct {
	ID          string `json:"id"`
	DayOfWeek   string `json:"day_of_week"`
	StartTime   string `json:"start_time"`
	EndTime     string `json:"end_time"`
	CourseTitle string `json:"course_title"`
	TeacherName string `json:"teacher_name,omitempty"`
	RoomNumber  string `json:"room_number,omitempty"`
}

type Routine struct {
	ID       string        `json:"id"`
	UserID   string        `json:"user_id"`
	Title    string        `json:"title"`
	Semester string        `json:"semester,omitempty"`
	IsActive bool          `json:"is_active"`
	Slots    []RoutineSlot `json:"slots"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	IsDeleted bool      `json:"is_deleted"`
	Version   int64     `json:"version"`
}

type CreateRoutineRequest struct {
	Title    string              `json:"title" validate:"required,max=100"`
	Semester string              `json:"semester"`
	Slots    []CreateSlotRequest `json:"slots" validate:"dive"`
}

type UpdateRoutineRequest struct {
	Title    *string `json:"title" validate:"omitempty,max=100"`
	Semester *string `json:"semester"`
}

type CreateSlotRequest struct {
	DayOfWeek   string `json:"day_of_week" validate:"required,oneof=Sun Mon Tue Wed Thu Fri Sat"`
	StartTime   string `json:"start_time" validate:"required"`
	EndTime     string `json:"end_time" validate:"required"`
	CourseTitle string `json:"course_title" validate:"required,max=100"`
	TeacherName string `json:"teacher_name"`
	RoomNumber  string `json:"room_number"`
}

type UpdateSlotRequest struct {
	DayOfWeek   *string `json:"day_of_week" validate:"omitempty,oneof=Sun Mon Tue Wed Thu Fri Sat"`
	StartTime   *string `json:"start_time"`
	EndTime     *string `json:"end_time"`
	CourseTitle *string `json:"course_title" validate:"omitempty,max=100"`
	TeacherName *string `json:"teacher_name"`
	RoomNumber  *string `json:"room_number"`
}
