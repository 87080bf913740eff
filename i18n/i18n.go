// Package i18n localizes user-facing API messages (Thai and English).
package i18n

import (
	"net/http"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

// Message keys.
const (
	Unauthorized       = "Unauthorized"
	NotFound           = "NotFound"
	MissingFields      = "MissingFields"
	ValidationError    = "ValidationError"
	DuplicateUsername  = "DuplicateUsername"
	DuplicateEmail     = "DuplicateEmail"
	InvalidCredentials = "InvalidCredentials"
	AccountInactive    = "AccountInactive"
	AccountPending     = "AccountPending"
	Conflict           = "Conflict"
	RateLimited        = "RateLimited"
	ServerError        = "ServerError"
	InvalidPayload     = "InvalidPayload"

	AssetDeleted      = "AssetDeleted"
	RegisterSucceeded = "RegisterSucceeded"
	LoggedOut         = "LoggedOut"
)

var entries = map[string][2]string{ // key: {th, en}
	Unauthorized:       {"กรุณาเข้าสู่ระบบ", "Unauthorized"},
	NotFound:           {"ไม่พบข้อมูล", "Not found"},
	MissingFields:      {"กรุณากรอกข้อมูลให้ครบถ้วน", "Please fill in all required fields"},
	ValidationError:    {"ข้อมูลไม่ถูกต้อง", "Invalid data"},
	DuplicateUsername:  {"ชื่อผู้ใช้นี้ถูกใช้งานแล้ว", "Username is already taken"},
	DuplicateEmail:     {"อีเมลนี้ถูกใช้งานแล้ว", "Email is already registered"},
	InvalidCredentials: {"ชื่อผู้ใช้หรือรหัสผ่านไม่ถูกต้อง", "Invalid username or password"},
	AccountInactive:    {"บัญชีผู้ใช้ถูกระงับการใช้งาน", "Account is inactive"},
	AccountPending:     {"บัญชีผู้ใช้รอการอนุมัติ", "Account is pending approval"},
	Conflict:           {"สถานะของรายการไม่อนุญาตให้ดำเนินการนี้", "The current state does not allow this operation"},
	RateLimited:        {"มีการร้องขอมากเกินไป กรุณาลองใหม่ภายหลัง", "Too many requests, try again later"},
	ServerError:        {"เกิดข้อผิดพลาดภายในระบบ", "Internal server error"},
	InvalidPayload:     {"รูปแบบข้อมูลไม่ถูกต้อง", "Invalid request payload"},
	AssetDeleted:       {"ลบอุปกรณ์เรียบร้อยแล้ว", "Asset deleted"},
	RegisterSucceeded:  {"ลงทะเบียนสำเร็จ กรุณารอผู้ดูแลระบบอนุมัติ", "Registration successful, awaiting administrator approval"},
	LoggedOut:          {"ออกจากระบบเรียบร้อยแล้ว", "Logged out"},
}

var supported = []language.Tag{language.Thai, language.English}

// Translator picks a language per request and formats catalog messages.
type Translator struct {
	catalog  catalog.Catalog
	matcher  language.Matcher
	tags     []language.Tag
	fallback language.Tag
}

// New builds the catalog. defaultLocale is used when Accept-Language matches
// nothing; an unknown value falls back to Thai.
func New(defaultLocale string) *Translator {
	b := catalog.NewBuilder(catalog.Fallback(language.Thai))
	for key, msgs := range entries {
		_ = b.SetString(language.Thai, key, msgs[0])
		_ = b.SetString(language.English, key, msgs[1])
	}

	fallback := language.Thai
	if tag, err := language.Parse(defaultLocale); err == nil {
		if _, idx, conf := language.NewMatcher(supported).Match(tag); conf >= language.High {
			fallback = supported[idx]
		}
	}

	// The fallback goes first so it wins when nothing matches.
	tags := []language.Tag{fallback}
	for _, t := range supported {
		if t != fallback {
			tags = append(tags, t)
		}
	}

	return &Translator{catalog: b, matcher: language.NewMatcher(tags), tags: tags, fallback: fallback}
}

// Language resolves an Accept-Language header value.
func (t *Translator) Language(acceptLanguage string) language.Tag {
	prefs, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(prefs) == 0 {
		return t.fallback
	}
	// Low confidence means an unrelated language was picked as a last resort.
	_, idx, conf := t.matcher.Match(prefs...)
	if conf < language.High {
		return t.fallback
	}
	return t.tags[idx]
}

func (t *Translator) Message(tag language.Tag, key string) string {
	return message.NewPrinter(tag, message.Catalog(t.catalog)).Sprintf(key)
}

// FromRequest localizes key for the request's Accept-Language header.
func (t *Translator) FromRequest(r *http.Request, key string) string {
	return t.Message(t.Language(r.Header.Get("Accept-Language")), key)
}
