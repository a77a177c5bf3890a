package schema

import (
	"fmt"
	"time"

	"github.com/lib/pq"
)

// ProjectRow coerces a row into upsert parameters: the key column first,
// then the columns of every field in order.
func ProjectRow(fields []Field, row Row) ([]any, error) {
	values := []any{row.ID}
	for _, f := range fields {
		vals, err := coerce(f.Kind, row.Values[f.Slug])
		if err != nil {
			return nil, fmt.Errorf("row %s, property %q: %w", row.ID, f.Slug, err)
		}
		values = append(values, vals...)
	}
	return values, nil
}

// coerce converts a runtime value into one parameter per column of kind.
// A nil value yields NULL in every column.
func coerce(kind PropertyType, v any) ([]any, error) {
	switch kind {
	case TypeDate:
		d, err := asDate(v)
		if err != nil || d == nil {
			return []any{nil, nil}, err
		}
		if d.End == nil {
			return []any{d.Start, nil}, nil
		}
		return []any{d.Start, *d.End}, nil

	case TypeRelation:
		refs, err := asRelation(v)
		if err != nil || refs == nil {
			return []any{nil, nil}, err
		}
		ids := pq.StringArray{}
		titles := pq.StringArray{}
		for _, ref := range refs {
			if ref == nil {
				continue
			}
			ids = append(ids, ref.ID)
			if ref.Title != nil {
				titles = append(titles, *ref.Title)
			} else {
				titles = append(titles, "")
			}
		}
		return []any{ids, titles}, nil

	case TypeMultiSelect:
		switch x := v.(type) {
		case nil:
			return []any{nil}, nil
		case []string:
			return []any{pq.StringArray(x)}, nil
		}
		return nil, fmt.Errorf("expected []string, got %T", v)

	case TypePerson:
		users, err := asUsers(v)
		if err != nil || users == nil {
			return []any{nil}, err
		}
		emails := pq.StringArray{}
		for _, u := range users {
			if u != nil {
				emails = append(emails, u.Email)
			}
		}
		return []any{emails}, nil

	case TypeCreatedBy:
		switch x := v.(type) {
		case nil:
			return []any{nil}, nil
		case User:
			return []any{x.Email}, nil
		case *User:
			if x == nil {
				return []any{nil}, nil
			}
			return []any{x.Email}, nil
		}
		return nil, fmt.Errorf("expected User, got %T", v)

	case TypeCreatedTime, TypeLastEditedTime:
		switch x := v.(type) {
		case nil, time.Time:
			return []any{x}, nil
		}
		return nil, fmt.Errorf("expected time.Time, got %T", v)

	case TypeTitle, TypeText, TypeURL, TypeSelect, TypeNumber, TypeCheckbox:
		return []any{v}, nil
	}
	return nil, fmt.Errorf("no coercion for %v", kind)
}

func asDate(v any) (*DateValue, error) {
	switch x := v.(type) {
	case nil:
		return nil, nil
	case DateValue:
		return &x, nil
	case *DateValue:
		return x, nil
	}
	return nil, fmt.Errorf("expected DateValue, got %T", v)
}

func asRelation(v any) ([]*RelationRef, error) {
	switch x := v.(type) {
	case nil:
		return nil, nil
	case []*RelationRef:
		return x, nil
	case []RelationRef:
		refs := make([]*RelationRef, len(x))
		for i := range x {
			refs[i] = &x[i]
		}
		return refs, nil
	}
	return nil, fmt.Errorf("expected []RelationRef, got %T", v)
}

func asUsers(v any) ([]*User, error) {
	switch x := v.(type) {
	case nil:
		return nil, nil
	case []*User:
		return x, nil
	case []User:
		users := make([]*User, len(x))
		for i := range x {
			users[i] = &x[i]
		}
		return users, nil
	}
	return nil, fmt.Errorf("expected []User, got %T", v)
}
