package handler

import (
	"net/http"
	"slices"
	"strconv"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"

	"github.com/xenking/product-catalog/internal/domain/product"
)

// DecodeCreateInput reads a create request object of the form
// {"name": {"en": "..."}, "description": {"en": "..."}}. Unknown fields are
// ignored and a null mapping is treated as absent.
func DecodeCreateInput(d *jx.Decoder) (product.CreateInput, error) {
	var in product.CreateInput
	err := d.ObjBytes(func(d *jx.Decoder, key []byte) error {
		var err error
		switch string(key) {
		case "name":
			in.Name, err = decodeTranslations(d)
			return errors.Wrap(err, "name")
		case "description":
			in.Description, err = decodeTranslations(d)
			return errors.Wrap(err, "description")
		default:
			return d.Skip()
		}
	})
	if err != nil {
		return product.CreateInput{}, err
	}
	return in, nil
}

func decodeTranslations(d *jx.Decoder) (map[string]string, error) {
	if d.Next() == jx.Null {
		return nil, d.Null()
	}
	m := make(map[string]string)
	if err := d.Obj(func(d *jx.Decoder, lang string) error {
		v, err := d.Str()
		if err != nil {
			return errors.Wrapf(err, "%q", lang)
		}
		m[lang] = v
		return nil
	}); err != nil {
		return nil, err
	}
	return m, nil
}

func encodeTime(e *jx.Encoder, t time.Time) {
	e.Str(t.UTC().Format(time.RFC3339Nano))
}

func encodeCreated(e *jx.Encoder, p *product.Product) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("product_id", func(e *jx.Encoder) { e.Int64(p.ID) })
		e.Field("created_at", func(e *jx.Encoder) { encodeTime(e, p.CreatedAt) })
		e.Field("updated_at", func(e *jx.Encoder) { encodeTime(e, p.UpdatedAt) })
	})
}

// encodeLocalized writes m with keys in sorted order so responses are stable.
func encodeLocalized(e *jx.Encoder, m map[string]string) {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	e.Obj(func(e *jx.Encoder) {
		for _, k := range keys {
			e.FieldStart(k)
			e.Str(m[k])
		}
	})
}

func encodeViews(e *jx.Encoder, views []product.View) {
	e.Arr(func(e *jx.Encoder) {
		for _, v := range views {
			e.Obj(func(e *jx.Encoder) {
				e.Field("productId", func(e *jx.Encoder) { e.Int64(v.ProductID) })
				e.Field("name", func(e *jx.Encoder) { encodeLocalized(e, v.Name) })
				e.Field("description", func(e *jx.Encoder) { encodeLocalized(e, v.Description) })
				e.Field("createdAt", func(e *jx.Encoder) { encodeTime(e, v.CreatedAt) })
				e.Field("updatedAt", func(e *jx.Encoder) { encodeTime(e, v.UpdatedAt) })
			})
		}
	})
}

func encodeMessage(e *jx.Encoder, msg string) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("message", func(e *jx.Encoder) { e.Str(msg) })
	})
}

// EncodeError writes the {"message", "error"} body shared by every failed
// request.
func EncodeError(e *jx.Encoder, msg, detail string) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("message", func(e *jx.Encoder) { e.Str(msg) })
		e.Field("error", func(e *jx.Encoder) { e.Str(detail) })
	})
}

func writeJSON(w http.ResponseWriter, status int, encode func(e *jx.Encoder)) {
	e := jx.GetEncoder()
	defer jx.PutEncoder(e)
	encode(e)

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Length", strconv.Itoa(len(e.Bytes())))
	w.WriteHeader(status)
	_, _ = w.Write(e.Bytes())
}

// WriteError writes a JSON error response with the given status.
func WriteError(w http.ResponseWriter, status int, msg, detail string) {
	writeJSON(w, status, func(e *jx.Encoder) { EncodeError(e, msg, detail) })
}
