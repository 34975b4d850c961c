package normalize

import (
	"encoding/json"

	"github.com/cmlabs-hris/hris-report-go/internal/domain/leave"
	"github.com/cmlabs-hris/hris-report-go/internal/pkg/metrics"
)

var (
	leaveHistoryRoots = []string{"leaveHistory", "data.leaveHistory", "history", "data"}
	leaveRequestRoots = []string{"leaves", "leaveRequests", "data.leaves", "data"}
	leaveBalanceRoots = []string{"balance", "balances", "data.balance", "data.balances", "data"}
)

// LeaveHistory normalizes the leave history of one employee.
func LeaveHistory(body []byte) Result[leave.Record] {
	return collect(body, leaveHistoryRoots, buildLeave)
}

// LeaveRequests normalizes the organisation-wide leave request listing.
func LeaveRequests(body []byte) Result[leave.Record] {
	return collect(body, leaveRequestRoots, buildLeave)
}

func buildLeave(o object) (leave.Record, bool) {
	id := o.str("leaveId", "leaveID", "leave_id", "_id", "id")
	if id == "" {
		return leave.Record{}, false
	}

	r := leave.Record{
		LeaveID:      id,
		EmployeeID:   o.str(employeeIDAliases...),
		EmployeeName: o.name(),
		ProjectName:  o.str(projectAliases...),
		LeaveType:    leave.ParseType(o.str("leaveType", "type", "leave_type", "leaveCode")),
		RawStartDate: o.str("startDate", "fromDate", "from", "start_date"),
		RawEndDate:   o.str("endDate", "toDate", "to", "end_date"),
		IsHalfDay:    o.boolean("isHalfDay", "halfDay", "is_half_day"),
		Status:       leave.ParseStatus(o.str(statusAliases...)),
		Reason:       o.str("reason", "remarks", "description"),
	}
	r.StartDate, _ = metrics.ParseDate(r.RawStartDate)
	r.EndDate, _ = metrics.ParseDate(r.RawEndDate)

	if days, ok := o.num("numberOfDays", "noOfDays", "days", "totalDays", "leaveDays"); ok && days > 0 {
		r.NumberOfDays = days
	} else {
		r.NumberOfDays = metrics.LeaveDays(r.StartDate, r.EndDate, r.IsHalfDay)
	}
	return r, true
}

// BalanceResult carries the balance entries and the totals served with them.
type BalanceResult struct {
	Result[leave.BalanceEntry]
	Balance leave.Balance
}

var balanceFieldAliases = map[string][]string{
	"allocated": {"allocated", "total", "entitled", "totalAllocated"},
	"used":      {"used", "taken", "availed", "totalUsed"},
	"remaining": {"remaining", "available", "balance", "totalRemaining"},
	"pending":   {"pending", "applied", "totalPending"},
}

// LeaveBalance normalizes a leave balance body. The balance may be an array of
// entries, an object keyed by leave type, or the whole body. Remaining values and
// totals are taken as served; absent totals are 0.
func LeaveBalance(body []byte) BalanceResult {
	root, ok := parseRoot(body)
	if !ok {
		return BalanceResult{Result: malformed[leave.BalanceEntry]()}
	}
	rootObj, _ := decodeObject(body)

	raw, found := findRoot(root, leaveBalanceRoots)
	if !found {
		if !hasBalanceShape(rootObj, body) {
			return BalanceResult{Result: emptyRoot[leave.BalanceEntry]()}
		}
		raw = body
	}

	employeeID := rootObj.str(append([]string{"data.employeeId"}, employeeIDAliases...)...)

	var res Result[leave.BalanceEntry]
	var holder object
	switch {
	case isObject(raw):
		holder, _ = decodeObject(raw)
		if nested, ok := findNestedEntries(raw); ok {
			res = buildAll(nested, func(o object) (leave.BalanceEntry, bool) {
				return buildBalanceEntry(o, employeeID, "")
			})
		} else {
			res = keyedBalance(raw, holder, employeeID)
		}
		if id := holder.str(employeeIDAliases...); id != "" && employeeID == "" {
			for i := range res.Records {
				res.Records[i].EmployeeID = id
			}
			employeeID = id
		}
	default:
		items, ok := decodeArray(raw)
		if !ok {
			return BalanceResult{Result: malformed[leave.BalanceEntry]()}
		}
		res = buildAll(items, func(o object) (leave.BalanceEntry, bool) {
			return buildBalanceEntry(o, employeeID, "")
		})
	}

	out := BalanceResult{Result: res, Balance: leave.Balance{EmployeeID: employeeID, Entries: res.Records}}
	out.Balance.TotalAllocated = total(rootObj, holder, "totalAllocated", "totals.allocated", "data.totalAllocated", "data.totals.allocated")
	out.Balance.TotalUsed = total(rootObj, holder, "totalUsed", "totals.used", "data.totalUsed", "data.totals.used")
	out.Balance.TotalRemaining = total(rootObj, holder, "totalRemaining", "totals.remaining", "data.totalRemaining", "data.totals.remaining")
	out.Balance.TotalPending = total(rootObj, holder, "totalPending", "totals.pending", "data.totalPending", "data.totals.pending")
	return out
}

func findNestedEntries(raw json.RawMessage) ([]json.RawMessage, bool) {
	var inner map[string]json.RawMessage
	if err := json.Unmarshal(raw, &inner); err != nil {
		return nil, false
	}
	for _, key := range []string{"entries", "balances", "leaveBalances", "leaves"} {
		if v, ok := inner[key]; ok {
			if items, ok := decodeArray(v); ok {
				return items, true
			}
		}
	}
	return nil, false
}

// keyedBalance reads {"EL": {...}, "SL": {...}} in document order. Keys whose value
// is not a balance-shaped object are ignored.
func keyedBalance(raw json.RawMessage, holder object, employeeID string) Result[leave.BalanceEntry] {
	res := Result[leave.BalanceEntry]{Kind: KindOK, Records: []leave.BalanceEntry{}}
	for _, key := range orderedKeys(raw) {
		child, ok := holder[key].(map[string]any)
		if !ok || !isBalanceShaped(object(child)) {
			continue
		}
		if entry, ok := buildBalanceEntry(object(child), employeeID, key); ok {
			res.Records = append(res.Records, entry)
		} else {
			res.Dropped++
		}
	}
	return res
}

func buildBalanceEntry(o object, employeeID, typeKey string) (leave.BalanceEntry, bool) {
	code := o.str("leaveType", "type", "code", "leaveCode", "name")
	if code == "" {
		code = typeKey
	}
	if code == "" {
		return leave.BalanceEntry{}, false
	}
	if id := o.str(employeeIDAliases...); id != "" {
		employeeID = id
	}
	e := leave.BalanceEntry{EmployeeID: employeeID, LeaveType: leave.ParseType(code)}
	e.Allocated, _ = o.num(balanceFieldAliases["allocated"]...)
	e.Used, _ = o.num(balanceFieldAliases["used"]...)
	e.Remaining, _ = o.num(balanceFieldAliases["remaining"]...)
	e.Pending, _ = o.num(balanceFieldAliases["pending"]...)
	return e, true
}

func isBalanceShaped(o object) bool {
	for _, aliases := range balanceFieldAliases {
		if _, ok := o.num(aliases...); ok {
			return true
		}
	}
	return false
}

func hasBalanceShape(root object, raw json.RawMessage) bool {
	for _, key := range orderedKeys(raw) {
		if child, ok := root[key].(map[string]any); ok && isBalanceShaped(object(child)) {
			return true
		}
	}
	return false
}

func total(root, holder object, aliases ...string) float64 {
	if v, ok := holder.num(aliases...); ok {
		return v
	}
	v, _ := root.num(aliases...)
	return v
}
