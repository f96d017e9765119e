package repository

import (
	"fmt"
	"strings"

	"ticket-marketplace/internal/model"
)

// queryArgs 收集 $n 參數
type queryArgs struct {
	values []interface{}
}

func (a *queryArgs) add(v interface{}) string {
	a.values = append(a.values, v)
	return fmt.Sprintf("$%d", len(a.values))
}

// ticketPredicate 回傳一段 WHERE 條件；條件不存在時回傳空字串
type ticketPredicate func(cond model.TicketSearchCondition, args *queryArgs) string

var ticketPredicates = []ticketPredicate{
	eventNameContains,
	hasStatus,
	hasOwnerID,
	hasCategoryID,
	eventDateFrom,
	eventDateUntil,
}

func eventNameContains(cond model.TicketSearchCondition, args *queryArgs) string {
	name := strings.TrimSpace(cond.EventName)
	if name == "" {
		return ""
	}
	return fmt.Sprintf(`event_name ILIKE %s ESCAPE '\'`, args.add("%"+escapeLike(name)+"%"))
}

func hasStatus(cond model.TicketSearchCondition, args *queryArgs) string {
	if cond.Status == nil {
		return ""
	}
	return "ticket_status = " + args.add(string(*cond.Status))
}

func hasOwnerID(cond model.TicketSearchCondition, args *queryArgs) string {
	if cond.OwnerID == nil {
		return ""
	}
	return "owner_id = " + args.add(*cond.OwnerID)
}

func hasCategoryID(cond model.TicketSearchCondition, args *queryArgs) string {
	if cond.CategoryID == nil {
		return ""
	}
	return "category_id = " + args.add(*cond.CategoryID)
}

func eventDateFrom(cond model.TicketSearchCondition, args *queryArgs) string {
	if cond.StartDate == nil {
		return ""
	}
	return "event_date >= " + args.add(cond.StartDate.UTC())
}

func eventDateUntil(cond model.TicketSearchCondition, args *queryArgs) string {
	if cond.EndDate == nil {
		return ""
	}
	return "event_date <= " + args.add(cond.EndDate.UTC())
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

// buildWhere 把存在的條件以 AND 串接；沒有任何條件時回傳空字串
func buildWhere(cond model.TicketSearchCondition, args *queryArgs) string {
	clauses := make([]string, 0, len(ticketPredicates))
	for _, predicate := range ticketPredicates {
		if clause := predicate(cond, args); clause != "" {
			clauses = append(clauses, clause)
		}
	}
	if len(clauses) == 0 {
		return ""
	}
	return "WHERE " + strings.Join(clauses, " AND ")
}

var sortColumns = map[model.SortField]string{
	model.SortByEventDate:     "event_date",
	model.SortByCreatedAt:     "created_at",
	model.SortBySellingPrice:  "selling_price",
	model.SortByOriginalPrice: "original_price",
}

// buildOrderBy 只接受白名單欄位；最後固定加上 ticket_id 讓分頁結果穩定
func buildOrderBy(orders []model.SortOrder) (string, error) {
	parts := make([]string, 0, len(orders)+1)
	for _, o := range orders {
		column, ok := sortColumns[o.Field]
		if !ok {
			return "", fmt.Errorf("unsupported sort field %q", o.Field)
		}
		direction := "ASC"
		if o.Desc {
			direction = "DESC"
		}
		parts = append(parts, fmt.Sprintf("%s %s NULLS LAST", column, direction))
	}
	parts = append(parts, "ticket_id ASC")
	return "ORDER BY " + strings.Join(parts, ", "), nil
}
