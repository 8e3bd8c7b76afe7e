package search

import (
	"strings"
	"time"

	"github.com/UserUmbasa/explore-with-me/internal/model"
	"github.com/UserUmbasa/explore-with-me/internal/utils"
	"gorm.io/gorm"
)

// term 单个条件
// sql 为空的条件只能在内存中求值,在统计数据填充之后应用
type term struct {
	sql   string
	args  []interface{}
	match func(*model.EventModel) bool
}

func (t term) postOnly() bool {
	return t.sql == ""
}

// Predicate 由若干条件组成的合取谓词
// 零值即恒真谓词
type Predicate struct {
	terms []term
}

// Identity 返回恒真谓词
func Identity() Predicate {
	return Predicate{}
}

// And 合取多个谓词
func And(predicates ...Predicate) Predicate {
	var terms []term
	for _, p := range predicates {
		terms = append(terms, p.terms...)
	}
	return Predicate{terms: terms}
}

// IsIdentity 是否为恒真谓词
func (p Predicate) IsIdentity() bool {
	return len(p.terms) == 0
}

// HasPostFilter 是否包含需在内存中求值的条件
func (p Predicate) HasPostFilter() bool {
	for _, t := range p.terms {
		if t.postOnly() {
			return true
		}
	}
	return false
}

// Apply 把可下推到数据库的条件追加到查询
func (p Predicate) Apply(db *gorm.DB) *gorm.DB {
	for _, t := range p.terms {
		if !t.postOnly() {
			db = db.Where(t.sql, t.args...)
		}
	}
	return db
}

// Matches 在内存中对事件求值全部条件
func (p Predicate) Matches(e *model.EventModel) bool {
	for _, t := range p.terms {
		if !t.match(e) {
			return false
		}
	}
	return true
}

// Filter 用只能在内存中求值的条件过滤事件
func (p Predicate) Filter(events []*model.EventModel) []*model.EventModel {
	if !p.HasPostFilter() {
		return events
	}
	out := make([]*model.EventModel, 0, len(events))
	for _, e := range events {
		keep := true
		for _, t := range p.terms {
			if t.postOnly() && !t.match(e) {
				keep = false
				break
			}
		}
		if keep {
			out = append(out, e)
		}
	}
	return out
}

// TextContains 标题摘要或描述中包含 text(大小写无关)
func TextContains(text string) Predicate {
	text = strings.TrimSpace(text)
	if text == "" {
		return Identity()
	}
	pattern := utils.ContainsPattern(text)
	needle := strings.ToLower(text)
	return Predicate{terms: []term{{
		sql:  "(LOWER(events.annotation) LIKE ? ESCAPE '" + utils.LikeEscapeChar + "' OR LOWER(events.description) LIKE ? ESCAPE '" + utils.LikeEscapeChar + "')",
		args: []interface{}{pattern, pattern},
		match: func(e *model.EventModel) bool {
			return strings.Contains(strings.ToLower(e.Annotation), needle) ||
				strings.Contains(strings.ToLower(e.Description), needle)
		},
	}}}
}

// CategoriesIn 分类属于 ids,空集合不限制
func CategoriesIn(ids []int64) Predicate {
	if len(ids) == 0 {
		return Identity()
	}
	set := toSet(ids)
	return Predicate{terms: []term{{
		sql:   "events.category_id IN ?",
		args:  []interface{}{ids},
		match: func(e *model.EventModel) bool { return set[e.CategoryID] },
	}}}
}

// UsersIn 发起人属于 ids,空集合不限制
func UsersIn(ids []int64) Predicate {
	if len(ids) == 0 {
		return Identity()
	}
	set := toSet(ids)
	return Predicate{terms: []term{{
		sql:   "events.initiator_id IN ?",
		args:  []interface{}{ids},
		match: func(e *model.EventModel) bool { return set[e.InitiatorID] },
	}}}
}

// PaidEq 是否收费,nil 不限制
func PaidEq(paid *bool) Predicate {
	if paid == nil {
		return Identity()
	}
	want := *paid
	return Predicate{terms: []term{{
		sql:   "events.paid = ?",
		args:  []interface{}{want},
		match: func(e *model.EventModel) bool { return e.Paid == want },
	}}}
}

// StateEq 状态等于 state
func StateEq(state model.EventState) Predicate {
	return Predicate{terms: []term{{
		sql:   "events.state = ?",
		args:  []interface{}{state},
		match: func(e *model.EventModel) bool { return e.State == state },
	}}}
}

// StatesIn 状态属于 states,空集合不限制
func StatesIn(states []model.EventState) Predicate {
	if len(states) == 0 {
		return Identity()
	}
	set := make(map[model.EventState]bool, len(states))
	for _, s := range states {
		set[s] = true
	}
	return Predicate{terms: []term{{
		sql:   "events.state IN ?",
		args:  []interface{}{states},
		match: func(e *model.EventModel) bool { return set[e.State] },
	}}}
}

// DateFrom 开始时间不早于 t
func DateFrom(t time.Time) Predicate {
	return Predicate{terms: []term{{
		sql:   "events.event_date >= ?",
		args:  []interface{}{t},
		match: func(e *model.EventModel) bool { return !e.EventDate.Before(t) },
	}}}
}

// DateTo 开始时间不晚于 t
func DateTo(t time.Time) Predicate {
	return Predicate{terms: []term{{
		sql:   "events.event_date <= ?",
		args:  []interface{}{t},
		match: func(e *model.EventModel) bool { return !e.EventDate.After(t) },
	}}}
}

// Available 仍有名额
// 已确认人数来自统计填充,只能在内存中求值
func Available() Predicate {
	return Predicate{terms: []term{{
		match: func(e *model.EventModel) bool { return e.Available() },
	}}}
}

func toSet(ids []int64) map[int64]bool {
	set := make(map[int64]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}
