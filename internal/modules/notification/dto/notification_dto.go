package dto

import "gabconcours.ga/backend/internal/entity"

type ListQuery struct {
	Page  int `form:"page" binding:"omitempty,min=1"`
	Limit int `form:"limit" binding:"omitempty,min=1,max=100"`
}

type NotificationList struct {
	Data   []entity.Notification `json:"data"`
	Unread int64                 `json:"unread"`
}
