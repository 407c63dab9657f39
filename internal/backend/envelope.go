package backend

import (
	"bytes"
	"encoding/json"
)

// List is the canonical form of every paginated or bare list the backend
// returns.
type List[T any] struct {
	Items []T `json:"items"`
	Total int `json:"total"`
}

type pagination struct {
	Total      *int `json:"total"`
	TotalItems *int `json:"totalItems"`
	TotalCount *int `json:"totalCount"`
}

func (p pagination) total() (int, bool) {
	switch {
	case p.Total != nil:
		return *p.Total, true
	case p.TotalItems != nil:
		return *p.TotalItems, true
	case p.TotalCount != nil:
		return *p.TotalCount, true
	}
	return 0, false
}

// DecodeList normalises the list envelopes the backend is known to use:
//
//	[...]
//	{"data": [...]}
//	{"data": [...], "pagination": {...}}
//	{"data": {"items": [...], "total": n}}
//	{"data": {"items": [...], "pagination": {...}}}
//	{"items": [...], "total": n}
//
// Anything else is a *DecodeError. Total defaults to the item count.
func DecodeList[T any](body []byte) (List[T], error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return List[T]{}, &DecodeError{Reason: "empty body"}
	}

	switch body[0] {
	case '[':
		return decodeItems[T](body, nil)
	case '{':
	default:
		return List[T]{}, &DecodeError{Reason: "body is neither an array nor an object"}
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return List[T]{}, &DecodeError{Reason: "malformed object", Err: err}
	}

	if data, ok := fields["data"]; ok {
		data = bytes.TrimSpace(data)
		if len(data) > 0 && data[0] == '[' {
			total, err := totalFrom(fields)
			if err != nil {
				return List[T]{}, err
			}
			return decodeItems[T](data, total)
		}
		if len(data) > 0 && data[0] == '{' {
			var inner map[string]json.RawMessage
			if err := json.Unmarshal(data, &inner); err != nil {
				return List[T]{}, &DecodeError{Reason: "malformed data object", Err: err}
			}
			return decodeItemsObject[T](inner)
		}
		return List[T]{}, &DecodeError{Reason: "data is neither an array nor an object"}
	}

	return decodeItemsObject[T](fields)
}

// decodeItemsObject handles {"items": [...], "total"|"pagination": ...}
func decodeItemsObject[T any](fields map[string]json.RawMessage) (List[T], error) {
	items, ok := fields["items"]
	if !ok {
		return List[T]{}, &DecodeError{Reason: "no items or data field"}
	}
	total, err := totalFrom(fields)
	if err != nil {
		return List[T]{}, err
	}
	return decodeItems[T](bytes.TrimSpace(items), total)
}

func totalFrom(fields map[string]json.RawMessage) (*int, error) {
	if raw, ok := fields["total"]; ok {
		var n int
		if err := json.Unmarshal(raw, &n); err != nil {
			return nil, &DecodeError{Reason: "total is not an integer", Err: err}
		}
		return &n, nil
	}
	if raw, ok := fields["pagination"]; ok {
		var p pagination
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, &DecodeError{Reason: "malformed pagination", Err: err}
		}
		if n, ok := p.total(); ok {
			return &n, nil
		}
	}
	return nil, nil
}

func decodeItems[T any](raw []byte, total *int) (List[T], error) {
	if len(raw) == 0 || raw[0] != '[' {
		return List[T]{}, &DecodeError{Reason: "items is not an array"}
	}
	var items []T
	if err := json.Unmarshal(raw, &items); err != nil {
		return List[T]{}, &DecodeError{Reason: "malformed item", Err: err}
	}
	if items == nil {
		items = []T{}
	}

	list := List[T]{Items: items, Total: len(items)}
	if total != nil {
		list.Total = *total
	}
	return list, nil
}

// DecodeData unwraps {"data": X} into T. Bodies without a data field are
// decoded as T directly.
func DecodeData[T any](body []byte) (T, error) {
	var out T

	body = bytes.TrimSpace(body)
	if len(body) > 0 && body[0] == '{' {
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(body, &fields); err != nil {
			return out, &DecodeError{Reason: "malformed object", Err: err}
		}
		if data, ok := fields["data"]; ok {
			body = data
		}
	}

	if err := json.Unmarshal(body, &out); err != nil {
		return out, &DecodeError{Reason: "unexpected data shape", Err: err}
	}
	return out, nil
}
