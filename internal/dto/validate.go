package dto

import (
	"strconv"
	"time"

	"github.com/Additional-Code/orderdesk/internal/entity"
	"github.com/Additional-Code/orderdesk/pkg/errorbank"
)

func validateDate(value string) error {
	if _, err := time.Parse(entity.DateLayout, value); err != nil {
		return errorbank.BadRequest("order_date must be formatted as YYYY-MM-DD", errorbank.WithDetail("value", value))
	}
	return nil
}

func validateIDs(ids []int64) error {
	if len(ids) == 0 {
		return errorbank.BadRequest("order_ids must not be empty")
	}
	for _, id := range ids {
		if id <= 0 {
			return errorbank.BadRequest("order_ids must be positive", errorbank.WithDetail("value", id))
		}
	}
	return nil
}

func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}
