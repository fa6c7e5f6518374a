package logger

import (
	"log/slog"
	"strconv"
)

// Group creates a slog group attribute from the provided attributes.
func Group(name string, attrs ...slog.Attr) slog.Attr {
	return slog.Attr{Key: name, Value: slog.GroupValue(attrs...)}
}

// Errors groups multiple non-nil errors under the key "errors".
// If all errors are nil, it returns an empty Attr.
func Errors(errs ...error) slog.Attr {
	as := make([]slog.Attr, 0, len(errs))
	for i, err := range errs {
		if err != nil {
			as = append(as, slog.Any(strconv.Itoa(i), err))
		}
	}
	if len(as) == 0 {
		return slog.Attr{}
	}
	return slog.Attr{Key: "errors", Value: slog.GroupValue(as...)}
}

// Error creates an attribute for a single error under the key "error".
// If err is nil, it returns an empty Attr.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.Any("error", err)
}

// Payer records the payer identifier under the key "payer".
// If payer is empty, it returns an empty Attr.
func Payer(payer string) slog.Attr {
	if payer == "" {
		return slog.Attr{}
	}
	return slog.String("payer", payer)
}

// Provider records the payment provider identifier under the key "provider".
func Provider(id string) slog.Attr {
	return slog.String("provider", id)
}

// Plan records the subscription plan identifier under the key "plan".
func Plan(id string) slog.Attr {
	return slog.String("plan", id)
}

// ExternalRef records the provider-side order reference under the key
// "external_ref". If ref is empty, it returns an empty Attr.
func ExternalRef(ref string) slog.Attr {
	if ref == "" {
		return slog.Attr{}
	}
	return slog.String("external_ref", ref)
}

// IdempotencyKey records the payment event key under the key
// "idempotency_key".
func IdempotencyKey(key string) slog.Attr {
	return slog.String("idempotency_key", key)
}

// RetryCount records the retry count under the key "retry_count".
func RetryCount(count int) slog.Attr {
	return slog.Int("retry_count", count)
}

// Duration records a duration under the key "duration".
func Duration(d any) slog.Attr {
	return slog.Any("duration", d)
}

// Component records the component name under the key "component".
func Component(name string) slog.Attr {
	return slog.String("component", name)
}

// Event records the event name under the key "event".
func Event(name string) slog.Attr {
	return slog.String("event", name)
}
