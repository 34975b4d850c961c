package normalize

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/cmlabs-hris/hris-report-go/internal/domain/employee"
)

// object is one decoded JSON object. Numbers are kept as json.Number.
type object map[string]any

// lookup resolves a dotted path such as "personalDetails.projectName".
func (o object) lookup(path string) (any, bool) {
	var current any = map[string]any(o)
	for _, part := range strings.Split(path, ".") {
		m, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}
		current, ok = m[part]
		if !ok {
			return nil, false
		}
	}
	return current, current != nil
}

// str returns the first alias holding a non-blank scalar, as text.
func (o object) str(aliases ...string) string {
	for _, alias := range aliases {
		v, ok := o.lookup(alias)
		if !ok {
			continue
		}
		var s string
		switch t := v.(type) {
		case string:
			s = strings.TrimSpace(t)
		case json.Number:
			s = t.String()
		case bool:
			s = strconv.FormatBool(t)
		}
		if s != "" {
			return s
		}
	}
	return ""
}

// num returns the first alias holding a number or a numeric string.
func (o object) num(aliases ...string) (float64, bool) {
	for _, alias := range aliases {
		v, ok := o.lookup(alias)
		if !ok {
			continue
		}
		switch t := v.(type) {
		case json.Number:
			if f, err := t.Float64(); err == nil {
				return f, true
			}
		case string:
			if f, err := strconv.ParseFloat(strings.TrimSpace(t), 64); err == nil {
				return f, true
			}
		}
	}
	return 0, false
}

// boolean accepts true/false, "yes"/"no", "1"/"0" and non-zero numbers.
func (o object) boolean(aliases ...string) bool {
	for _, alias := range aliases {
		v, ok := o.lookup(alias)
		if !ok {
			continue
		}
		switch t := v.(type) {
		case bool:
			return t
		case json.Number:
			f, err := t.Float64()
			return err == nil && f != 0
		case string:
			switch strings.ToLower(strings.TrimSpace(t)) {
			case "true", "yes", "y", "1":
				return true
			case "false", "no", "n", "0", "":
				return false
			}
		}
	}
	return false
}

// list returns the first alias holding an array, a comma separated string,
// or an array of objects carrying a name-like field.
func (o object) list(aliases ...string) []string {
	for _, alias := range aliases {
		v, ok := o.lookup(alias)
		if !ok {
			continue
		}
		var out []string
		switch t := v.(type) {
		case []any:
			for _, item := range t {
				switch it := item.(type) {
				case string:
					if s := strings.TrimSpace(it); s != "" {
						out = append(out, s)
					}
				case map[string]any:
					if s := itemLabel(object(it)); s != "" {
						out = append(out, s)
					}
				}
			}
		case string:
			for _, part := range strings.Split(t, ",") {
				if s := strings.TrimSpace(part); s != "" {
					out = append(out, s)
				}
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	return nil
}

func itemLabel(o object) string {
	label := o.str("name", "item", "itemName", "type", "uniformType")
	if label == "" {
		return ""
	}
	if size := o.str("size"); size != "" {
		label += " (" + size + ")"
	}
	if qty, ok := o.num("quantity", "qty"); ok && qty > 1 {
		label += " x" + strconv.FormatFloat(qty, 'f', -1, 64)
	}
	return label
}

var (
	employeeIDAliases = []string{
		"employeeId", "employeeID", "empId", "employee_id", "employeeCode",
		"employee.employeeId", "personalDetails.employeeId",
	}
	projectAliases = []string{
		"projectName", "project", "project_name", "personalDetails.projectName",
		"employee.projectName", "employee.personalDetails.projectName",
	}
	designationAliases = []string{
		"designation", "personalDetails.designation", "employee.designation",
		"employee.personalDetails.designation",
	}
	statusAliases = []string{"status", "currentStatus", "state"}
)

// name assembles the display name from a full-name field or first/last parts.
func (o object) name() string {
	if full := o.str("employeeName", "fullName", "name", "employee.fullName",
		"employee.name", "personalDetails.fullName"); full != "" {
		return full
	}
	if joined := employee.JoinName(o.str("personalDetails.firstName"), o.str("personalDetails.lastName")); joined != "" {
		return joined
	}
	return employee.JoinName(o.str("firstName"), o.str("lastName"))
}
