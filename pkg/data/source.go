package data

import (
	"context"
	"encoding/json"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/matzehuels/locuszoom/pkg/errors"
)

// DefaultTimeout bounds a single source request when the init omits one.
const DefaultTimeout = 10 * time.Second

// Link is one stage of a request chain. It receives the chain built so far
// and returns it extended.
type Link func(ctx context.Context, c Chain) (Chain, error)

// Source builds links for one kind of remote data.
type Source interface {
	// Name is the SOURCE_NAME the source is registered under.
	Name() string
	// Init returns the configuration the source was built from.
	Init() Init
	// URL builds the request URL for state and the chain so far.
	URL(state State, c Chain, fields []string) (string, error)
	// GetData validates the request and returns a link that performs it.
	// Configuration errors are returned here, data errors from the link.
	GetData(state State, fields, outnames []string) (Link, error)
}

// Fetcher performs a GET and returns the response body.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// Init configures a source.
type Init struct {
	URL     string         `json:"url,omitempty"`
	Params  map[string]any `json:"params,omitempty"`
	Timeout time.Duration  `json:"-"`
}

// ParseInit accepts a bare URL string or an object with url, params and an
// optional timeout ("5s" or seconds). A missing URL is MISSING_URL.
func ParseInit(raw any) (Init, error) {
	init, err := parseInitLoose(raw)
	if err != nil {
		return Init{}, err
	}
	if init.URL == "" {
		return Init{}, errors.New(errors.ErrCodeMissingURL, "source requires a url")
	}
	return init, nil
}

func parseInitLoose(raw any) (Init, error) {
	init := Init{Params: map[string]any{}, Timeout: DefaultTimeout}
	switch v := raw.(type) {
	case nil:
	case string:
		init.URL = v
	case Init:
		init = v
		if init.Params == nil {
			init.Params = map[string]any{}
		}
		if init.Timeout == 0 {
			init.Timeout = DefaultTimeout
		}
	case map[string]any:
		if u, ok := v["url"].(string); ok {
			init.URL = u
		}
		if p, ok := v["params"].(map[string]any); ok {
			init.Params = p
		}
		switch t := v["timeout"].(type) {
		case string:
			d, err := time.ParseDuration(t)
			if err != nil {
				return Init{}, errors.Wrap(errors.ErrCodeConfig, err, "invalid source timeout %q", t)
			}
			init.Timeout = d
		case float64:
			init.Timeout = time.Duration(t * float64(time.Second))
		case int:
			init.Timeout = time.Duration(t) * time.Second
		}
	default:
		return Init{}, errors.New(errors.ErrCodeConfig, "source init must be a url or an object, got %T", raw)
	}
	return init, nil
}

// MarshalJSON emits {url, params, timeout}.
func (i Init) MarshalJSON() ([]byte, error) {
	out := map[string]any{}
	if i.URL != "" {
		out["url"] = i.URL
	}
	if len(i.Params) > 0 {
		out["params"] = i.Params
	}
	if i.Timeout > 0 && i.Timeout != DefaultTimeout {
		out["timeout"] = i.Timeout.String()
	}
	return json.Marshal(out)
}

func (i Init) paramInt(key string, def int) int {
	switch v := i.Params[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	case string:
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func (i Init) paramString(key, def string) string {
	if s, ok := i.Params[key].(string); ok && s != "" {
		return s
	}
	return def
}

// remote holds what every HTTP-backed source shares.
type remote struct {
	name  string
	init  Init
	fetch Fetcher
}

func (r *remote) Name() string { return r.name }
func (r *remote) Init() Init   { return r.init }

// get fetches u and returns its "data" member.
func (r *remote) get(ctx context.Context, u string) (gjson.Result, error) {
	if r.fetch == nil {
		return gjson.Result{}, errors.New(errors.ErrCodeInternal, "%s: no fetcher configured", r.name)
	}
	if r.init.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.init.Timeout)
		defer cancel()
	}
	body, err := r.fetch.Fetch(ctx, u)
	if err != nil {
		return gjson.Result{}, err
	}
	data, err := envelope(body)
	if err != nil {
		return gjson.Result{}, errors.Wrap(errors.GetCode(err), err, "%s", r.name)
	}
	return data, nil
}

// envelope returns the "data" member of a response body. A body that is not
// JSON is TRANSPORT_ERROR; one without the member is FIELD_MISMATCH.
func envelope(body []byte) (gjson.Result, error) {
	if !gjson.ValidBytes(body) {
		return gjson.Result{}, errors.New(errors.ErrCodeTransport, "response is not valid JSON")
	}
	data := gjson.GetBytes(body, "data")
	if !data.Exists() {
		return gjson.Result{}, errors.New(errors.ErrCodeFieldMismatch, "response has no data member")
	}
	return data, nil
}

// query appends url-encoded parameters to base.
func query(base string, params url.Values) string {
	enc := strings.ReplaceAll(params.Encode(), "+", "%20")
	if strings.Contains(base, "?") {
		return base + "&" + enc
	}
	return base + "?" + enc
}

// columns transposes a columnar {field: [values]} object into records.
func columns(name string, data gjson.Result, exprs, outnames []string) ([]Record, error) {
	fields, err := parseFields(exprs)
	if err != nil {
		return nil, err
	}
	if !data.IsObject() {
		return nil, errors.New(errors.ErrCodeFieldMismatch, "%s: data is not a columnar object", name)
	}
	cols := data.Map()
	arrays := make([][]gjson.Result, len(fields))
	n := -1
	for i, f := range fields {
		col, ok := cols[f.Column]
		if !ok || !col.IsArray() {
			return nil, errors.New(errors.ErrCodeFieldMismatch, "%s: field %q not found in response", name, f.Column)
		}
		arrays[i] = col.Array()
		if n < 0 {
			n = len(arrays[i])
		} else if len(arrays[i]) != n {
			return nil, errors.New(errors.ErrCodeFieldMismatch,
				"%s: field %q has %d values, want %d", name, f.Column, len(arrays[i]), n)
		}
	}
	if n < 0 {
		n = 0
	}
	body := make([]Record, n)
	for row := range body {
		rec := make(Record, len(fields))
		for i, f := range fields {
			rec[outnames[i]] = f.Apply(arrays[i][row].Value())
		}
		body[row] = rec
	}
	return body, nil
}

// outnamesFor defaults outnames to the field names.
func outnamesFor(fields, outnames []string) []string {
	if len(outnames) == len(fields) {
		return outnames
	}
	return append([]string(nil), fields...)
}
