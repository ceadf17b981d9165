package wire

import "fmt"

// Translation hint targets understood by the backend.
const (
	HelpTargetVideoFileURL     = "video_file_url"
	HelpTargetSubtitlesFileURL = "subtitles_file_url"
)

// TranslationHelp points the backend at a direct media or subtitles URL when
// the page URL alone is not enough.
type TranslationHelp struct {
	Target    string
	TargetURL string
}

// TranslateRequest mirrors the backend's request schema. Field tags are part
// of the external protocol and must never be renumbered.
type TranslateRequest struct {
	URL              string            // 3
	DeviceID         string            // 4
	FirstRequest     bool              // 5
	Duration         float64           // 6
	Unknown0         int32             // 7, the backend expects 1
	Language         string            // 8
	ForceSourceLang  bool              // 9
	Unknown1         int32             // 10, always emitted, the backend expects 0
	TranslationHelp  []TranslationHelp // 11
	WasStream        bool              // 13
	ResponseLanguage string            // 14
	Unknown2         int32             // 15, the backend expects 1
	Unknown3         int32             // 16, the backend expects 2
	BypassCache      bool              // 17
	UseLivelyVoice   bool              // 18
	VideoTitle       string            // 19
}

// Status is the backend's translation state. Value 4 is reserved upstream and
// may still arrive; callers must treat unlisted values as a failure, not a crash.
type Status int32

const (
	StatusFailed         Status = 0
	StatusFinished       Status = 1
	StatusWaiting        Status = 2
	StatusLongWaiting    Status = 3
	StatusPartContent    Status = 5
	StatusAudioRequested Status = 6
	StatusProcessing     Status = 7
)

// TranslateResponse mirrors the backend's response schema.
type TranslateResponse struct {
	URL           string  // 1
	Duration      float64 // 2
	Status        Status  // 4
	RemainingTime int32   // 5
	Unknown6      int32   // 6
	Code          string  // 7
	Language      string  // 8
	Message       string  // 9
}

// Marshal encodes the request deterministically: fields in tag order, hints in
// list order, zero-valued fields omitted. The only exception is Unknown1,
// which the backend wants on the wire even when zero.
func (m *TranslateRequest) Marshal() []byte {
	b := make([]byte, 0, 64+len(m.URL)+len(m.VideoTitle))
	if m.URL != "" {
		b = appendStringField(b, 3, m.URL)
	}
	if m.DeviceID != "" {
		b = appendStringField(b, 4, m.DeviceID)
	}
	if m.FirstRequest {
		b = appendBoolField(b, 5, true)
	}
	if m.Duration != 0 {
		b = appendDoubleField(b, 6, m.Duration)
	}
	if m.Unknown0 != 0 {
		b = appendVarintField(b, 7, uint64(uint32(m.Unknown0)))
	}
	if m.Language != "" {
		b = appendStringField(b, 8, m.Language)
	}
	if m.ForceSourceLang {
		b = appendBoolField(b, 9, true)
	}
	b = appendVarintField(b, 10, uint64(uint32(m.Unknown1)))
	for _, h := range m.TranslationHelp {
		b = appendBytesField(b, 11, h.marshal())
	}
	if m.WasStream {
		b = appendBoolField(b, 13, true)
	}
	if m.ResponseLanguage != "" {
		b = appendStringField(b, 14, m.ResponseLanguage)
	}
	if m.Unknown2 != 0 {
		b = appendVarintField(b, 15, uint64(uint32(m.Unknown2)))
	}
	if m.Unknown3 != 0 {
		b = appendVarintField(b, 16, uint64(uint32(m.Unknown3)))
	}
	if m.BypassCache {
		b = appendBoolField(b, 17, true)
	}
	if m.UseLivelyVoice {
		b = appendBoolField(b, 18, true)
	}
	if m.VideoTitle != "" {
		b = appendStringField(b, 19, m.VideoTitle)
	}
	return b
}

func (h *TranslationHelp) marshal() []byte {
	b := make([]byte, 0, 4+len(h.Target)+len(h.TargetURL))
	if h.Target != "" {
		b = appendStringField(b, 1, h.Target)
	}
	if h.TargetURL != "" {
		b = appendStringField(b, 2, h.TargetURL)
	}
	return b
}

// Unmarshal decodes a request. The bot only ever encodes requests; decoding
// exists to verify the encoder against itself.
func (m *TranslateRequest) Unmarshal(data []byte) error {
	r := &reader{buf: data}
	for !r.done() {
		field, wt, err := r.tag()
		if err != nil {
			return err
		}
		switch {
		case field == 3 && wt == wireBytes:
			v, err := r.bytes()
			if err != nil {
				return err
			}
			m.URL = string(v)
		case field == 4 && wt == wireBytes:
			v, err := r.bytes()
			if err != nil {
				return err
			}
			m.DeviceID = string(v)
		case field == 5 && wt == wireVarint:
			v, err := r.uvarint()
			if err != nil {
				return err
			}
			m.FirstRequest = v != 0
		case field == 6 && wt == wireFixed64:
			v, err := r.double()
			if err != nil {
				return err
			}
			m.Duration = v
		case field == 7 && wt == wireVarint:
			v, err := r.uvarint()
			if err != nil {
				return err
			}
			m.Unknown0 = int32(v)
		case field == 8 && wt == wireBytes:
			v, err := r.bytes()
			if err != nil {
				return err
			}
			m.Language = string(v)
		case field == 9 && wt == wireVarint:
			v, err := r.uvarint()
			if err != nil {
				return err
			}
			m.ForceSourceLang = v != 0
		case field == 10 && wt == wireVarint:
			v, err := r.uvarint()
			if err != nil {
				return err
			}
			m.Unknown1 = int32(v)
		case field == 11 && wt == wireBytes:
			v, err := r.bytes()
			if err != nil {
				return err
			}
			var h TranslationHelp
			if err := h.unmarshal(v); err != nil {
				return err
			}
			m.TranslationHelp = append(m.TranslationHelp, h)
		case field == 13 && wt == wireVarint:
			v, err := r.uvarint()
			if err != nil {
				return err
			}
			m.WasStream = v != 0
		case field == 14 && wt == wireBytes:
			v, err := r.bytes()
			if err != nil {
				return err
			}
			m.ResponseLanguage = string(v)
		case field == 15 && wt == wireVarint:
			v, err := r.uvarint()
			if err != nil {
				return err
			}
			m.Unknown2 = int32(v)
		case field == 16 && wt == wireVarint:
			v, err := r.uvarint()
			if err != nil {
				return err
			}
			m.Unknown3 = int32(v)
		case field == 17 && wt == wireVarint:
			v, err := r.uvarint()
			if err != nil {
				return err
			}
			m.BypassCache = v != 0
		case field == 18 && wt == wireVarint:
			v, err := r.uvarint()
			if err != nil {
				return err
			}
			m.UseLivelyVoice = v != 0
		case field == 19 && wt == wireBytes:
			v, err := r.bytes()
			if err != nil {
				return err
			}
			m.VideoTitle = string(v)
		default:
			if err := r.skip(wt); err != nil {
				return err
			}
		}
	}
	return nil
}

func (h *TranslationHelp) unmarshal(data []byte) error {
	r := &reader{buf: data}
	for !r.done() {
		field, wt, err := r.tag()
		if err != nil {
			return fmt.Errorf("translation help: %w", err)
		}
		switch {
		case field == 1 && wt == wireBytes:
			v, err := r.bytes()
			if err != nil {
				return err
			}
			h.Target = string(v)
		case field == 2 && wt == wireBytes:
			v, err := r.bytes()
			if err != nil {
				return err
			}
			h.TargetURL = string(v)
		default:
			if err := r.skip(wt); err != nil {
				return err
			}
		}
	}
	return nil
}

// Marshal encodes a response. Production code never sends responses; this is
// for tests and mock backends.
func (m *TranslateResponse) Marshal() []byte {
	b := make([]byte, 0, 32+len(m.URL)+len(m.Message))
	if m.URL != "" {
		b = appendStringField(b, 1, m.URL)
	}
	if m.Duration != 0 {
		b = appendDoubleField(b, 2, m.Duration)
	}
	if m.Status != 0 {
		b = appendVarintField(b, 4, uint64(uint32(m.Status)))
	}
	if m.RemainingTime != 0 {
		b = appendVarintField(b, 5, uint64(uint32(m.RemainingTime)))
	}
	if m.Unknown6 != 0 {
		b = appendVarintField(b, 6, uint64(uint32(m.Unknown6)))
	}
	if m.Code != "" {
		b = appendStringField(b, 7, m.Code)
	}
	if m.Language != "" {
		b = appendStringField(b, 8, m.Language)
	}
	if m.Message != "" {
		b = appendStringField(b, 9, m.Message)
	}
	return b
}

// Unmarshal decodes a backend response. Unknown tags are skipped by wire type
// so trailing additions upstream do not break the bot.
func (m *TranslateResponse) Unmarshal(data []byte) error {
	r := &reader{buf: data}
	for !r.done() {
		field, wt, err := r.tag()
		if err != nil {
			return err
		}
		switch {
		case field == 1 && wt == wireBytes:
			v, err := r.bytes()
			if err != nil {
				return err
			}
			m.URL = string(v)
		case field == 2 && wt == wireFixed64:
			v, err := r.double()
			if err != nil {
				return err
			}
			m.Duration = v
		case field == 4 && wt == wireVarint:
			v, err := r.uvarint()
			if err != nil {
				return err
			}
			m.Status = Status(int32(v))
		case field == 5 && wt == wireVarint:
			v, err := r.uvarint()
			if err != nil {
				return err
			}
			m.RemainingTime = int32(v)
		case field == 6 && wt == wireVarint:
			v, err := r.uvarint()
			if err != nil {
				return err
			}
			m.Unknown6 = int32(v)
		case field == 7 && wt == wireBytes:
			v, err := r.bytes()
			if err != nil {
				return err
			}
			m.Code = string(v)
		case field == 8 && wt == wireBytes:
			v, err := r.bytes()
			if err != nil {
				return err
			}
			m.Language = string(v)
		case field == 9 && wt == wireBytes:
			v, err := r.bytes()
			if err != nil {
				return err
			}
			m.Message = string(v)
		default:
			if err := r.skip(wt); err != nil {
				return err
			}
		}
	}
	return nil
}
