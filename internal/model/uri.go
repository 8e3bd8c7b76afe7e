package model

import (
	"fmt"
	"strconv"
	"strings"
)

// EventsURI 事件集合的统计 URI
const EventsURI = "/events"

const eventURIPrefix = EventsURI + "/"

// EventURI 返回单个事件的统计 URI
func EventURI(id int64) string {
	return fmt.Sprintf("%s%d", eventURIPrefix, id)
}

// ParseEventURI 从统计 URI 中解析事件 ID
func ParseEventURI(uri string) (int64, error) {
	if !strings.HasPrefix(uri, eventURIPrefix) {
		return 0, fmt.Errorf("uri %q is not an event uri", uri)
	}
	id, err := strconv.ParseInt(strings.TrimPrefix(uri, eventURIPrefix), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("uri %q has malformed event id: %w", uri, err)
	}
	return id, nil
}
