package search

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/UserUmbasa/explore-with-me/internal/model"
)

var (
	// ErrInvalidRange rangeStart 晚于 rangeEnd
	ErrInvalidRange = errors.New("rangeStart must not be after rangeEnd")
	// ErrInvalidSort 未知排序方式
	ErrInvalidSort = errors.New("unknown sort")
	// ErrInvalidState 未知事件状态
	ErrInvalidState = errors.New("unknown event state")
)

// Sort 公开搜索排序方式
type Sort string

const (
	SortEventDate Sort = "EVENT_DATE"
	SortViews     Sort = "VIEWS"
)

// ParseSort 解析排序方式,空值为 EVENT_DATE
func ParseSort(s string) (Sort, error) {
	switch Sort(s) {
	case "", SortEventDate:
		return SortEventDate, nil
	case SortViews:
		return SortViews, nil
	}
	return "", fmt.Errorf("%w: %s", ErrInvalidSort, s)
}

// ParseStates 解析状态列表
func ParseStates(values []string) ([]model.EventState, error) {
	states := make([]model.EventState, 0, len(values))
	for _, v := range values {
		s := model.EventState(v)
		if !s.Valid() {
			return nil, fmt.Errorf("%w: %s", ErrInvalidState, v)
		}
		states = append(states, s)
	}
	return states, nil
}

// Spec 可由仓储执行的查询描述
type Spec struct {
	Where       Predicate
	Order       []string
	Offset      int
	Limit       int
	SortByViews bool
}

// Finish 在统计数据填充后应用内存条件和按浏览量排序
func (s Spec) Finish(events []*model.EventModel) []*model.EventModel {
	events = s.Where.Filter(events)
	if s.SortByViews {
		sort.SliceStable(events, func(i, j int) bool {
			return events[i].Views > events[j].Views
		})
	}
	return events
}

// PublicFilter 公开搜索条件
type PublicFilter struct {
	Text          string
	Categories    []int64
	Paid          *bool
	RangeStart    *time.Time
	RangeEnd      *time.Time
	OnlyAvailable bool
	Sort          Sort
	From          int
	Size          int
}

// Build 生成查询描述,只返回已发布事件
// 未给出 rangeStart 时只返回 now 之后的事件
func (f PublicFilter) Build(now time.Time) (Spec, error) {
	if err := checkRange(f.RangeStart, f.RangeEnd); err != nil {
		return Spec{}, err
	}
	sortBy, err := ParseSort(string(f.Sort))
	if err != nil {
		return Spec{}, err
	}

	start := now
	if f.RangeStart != nil {
		start = *f.RangeStart
	}

	where := And(
		StateEq(model.EventStatePublished),
		TextContains(f.Text),
		CategoriesIn(f.Categories),
		PaidEq(f.Paid),
		DateFrom(start),
		rangeEnd(f.RangeEnd),
	)
	if f.OnlyAvailable {
		where = And(where, Available())
	}

	return Spec{
		Where:       where,
		Order:       []string{"events.event_date ASC", "events.id ASC"},
		Offset:      f.From,
		Limit:       f.Size,
		SortByViews: sortBy == SortViews,
	}, nil
}

// AdminFilter 管理员搜索条件
type AdminFilter struct {
	Users      []int64
	States     []model.EventState
	Categories []int64
	RangeStart *time.Time
	RangeEnd   *time.Time
	From       int
	Size       int
}

// Build 生成查询描述,不附加隐式的时间下限
func (f AdminFilter) Build() (Spec, error) {
	if err := checkRange(f.RangeStart, f.RangeEnd); err != nil {
		return Spec{}, err
	}
	for _, s := range f.States {
		if !s.Valid() {
			return Spec{}, fmt.Errorf("%w: %s", ErrInvalidState, s)
		}
	}

	where := And(
		UsersIn(f.Users),
		StatesIn(f.States),
		CategoriesIn(f.Categories),
		rangeStart(f.RangeStart),
		rangeEnd(f.RangeEnd),
	)

	return Spec{
		Where:  where,
		Order:  []string{"events.id ASC"},
		Offset: f.From,
		Limit:  f.Size,
	}, nil
}

func checkRange(start, end *time.Time) error {
	if start != nil && end != nil && start.After(*end) {
		return ErrInvalidRange
	}
	return nil
}

func rangeStart(t *time.Time) Predicate {
	if t == nil {
		return Identity()
	}
	return DateFrom(*t)
}

func rangeEnd(t *time.Time) Predicate {
	if t == nil {
		return Identity()
	}
	return DateTo(*t)
}
