// Package tlvserver exposes the BER-TLV codec over HTTP.
//
//	POST /decode   body is TLV octets (or hex with ?hex=true); returns JSON records
//	POST /encode   body is JSON records; returns TLV octets (or hex with ?hex=true)
//	POST /length   body is {"size": "300"}; returns the encoded length field
//	GET  /healthz
//
// Every codec endpoint accepts ?profile=name to select a named codec
// configuration.
package tlvserver

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/big"
	"net/http"
	"strconv"

	"github.com/epithet-ssh/tlv/pkg/bertlv"
	"github.com/epithet-ssh/tlv/pkg/config"
	"github.com/epithet-ssh/tlv/pkg/hexfmt"
	"github.com/go-chi/chi/v5"
)

// DefaultBodyLimit is the default maximum request body size.
const DefaultBodyLimit = 1 << 20

type server struct {
	log       *slog.Logger
	codec     config.Codec
	profiles  map[string]config.Codec
	bodyLimit int64
}

// Option configures the server.
type Option func(*server)

// WithCodec sets the codec settings used when no profile is requested.
func WithCodec(c config.Codec) Option {
	return func(s *server) {
		s.codec = c
	}
}

// WithProfiles sets the named codec settings selectable with ?profile=.
func WithProfiles(p map[string]config.Codec) Option {
	return func(s *server) {
		s.profiles = p
	}
}

// WithBodyLimit sets the maximum request body size in bytes.
func WithBodyLimit(n int64) Option {
	return func(s *server) {
		s.bodyLimit = n
	}
}

// New creates the codec service handler. Middleware such as request
// logging is left to the caller.
func New(log *slog.Logger, opts ...Option) http.Handler {
	s := &server{
		log:       log,
		bodyLimit: DefaultBodyLimit,
	}
	for _, o := range opts {
		o(s)
	}
	if s.log == nil {
		s.log = slog.Default()
	}

	r := chi.NewRouter()
	r.Get("/healthz", s.healthz)
	r.Post("/decode", s.decode)
	r.Post("/encode", s.encode)
	r.Post("/length", s.length)
	return r
}

// Record is the JSON form of a TLV record. Tag and Value are hex; Length
// is decimal so lengths beyond 2^53 survive JSON.
type Record struct {
	Tag      string `json:"tag"`
	Length   string `json:"length,omitempty"`
	Value    string `json:"value,omitempty"`
	Streamed bool   `json:"streamed,omitempty"`
}

// DecodeResponse is returned by /decode.
type DecodeResponse struct {
	Records []Record `json:"records"`
	Offset  int64    `json:"offset"`
}

// EncodeRequest is accepted by /encode.
type EncodeRequest struct {
	Records []Record `json:"records"`
}

// LengthRequest is accepted by /length.
type LengthRequest struct {
	Size string `json:"size"`
}

// LengthResponse is returned by /length.
type LengthResponse struct {
	Length string `json:"length"`
}

// ErrorResponse is returned for every failed request.
type ErrorResponse struct {
	Error  string `json:"error"`
	Offset *int64 `json:"offset,omitempty"`
}

func (s *server) healthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Add("Content-type", "text/plain")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

func (s *server) decode(w http.ResponseWriter, r *http.Request) {
	codec, ok := s.profile(w, r)
	if !ok {
		return
	}

	body := http.MaxBytesReader(w, r.Body, s.bodyLimit)
	var in io.Reader = body
	if asHex(r) {
		text, err := io.ReadAll(body)
		if err != nil {
			s.fail(w, bodyStatus(err), fmt.Errorf("unable to read body: %w", err))
			return
		}
		raw, err := hexfmt.Parse(string(text))
		if err != nil {
			s.fail(w, http.StatusBadRequest, err)
			return
		}
		in = bytes.NewReader(raw)
	}

	dec := bertlv.NewDecoder(in, codec.DecoderOptions()...)
	resp := DecodeResponse{Records: []Record{}}
	for rec, err := range dec.All() {
		if err != nil {
			s.decodeError(w, err, dec.Offset())
			return
		}
		switch rec := rec.(type) {
		case *bertlv.Item:
			resp.Records = append(resp.Records, Record{
				Tag:    rec.Tag.String(),
				Length: strconv.Itoa(len(rec.Value)),
				Value:  fmt.Sprintf("%X", rec.Value),
			})
		case *bertlv.LargeItem:
			s.log.Debug("streaming large value", "tag", rec.Tag.String(), "length", rec.Length.String())
			resp.Records = append(resp.Records, Record{
				Tag:      rec.Tag.String(),
				Length:   rec.Length.String(),
				Streamed: true,
			})
		}
	}
	resp.Offset = dec.Offset()

	s.writeJSON(w, http.StatusOK, resp)
}

func (s *server) encode(w http.ResponseWriter, r *http.Request) {
	codec, ok := s.profile(w, r)
	if !ok {
		return
	}

	var req EncodeRequest
	if !s.readJSON(w, r, &req) {
		return
	}

	var out bytes.Buffer
	enc := bertlv.NewEncoder(&out, codec.EncoderOptions()...)
	for i, rec := range req.Records {
		tag, err := hexfmt.Parse(rec.Tag)
		if err != nil {
			s.fail(w, http.StatusBadRequest, fmt.Errorf("record %d: tag: %w", i, err))
			return
		}
		if !bertlv.Tag(tag).Valid() {
			s.fail(w, http.StatusUnprocessableEntity, fmt.Errorf("record %d: %X is not a well-formed tag", i, tag))
			return
		}
		value, err := hexfmt.Parse(rec.Value)
		if err != nil {
			s.fail(w, http.StatusBadRequest, fmt.Errorf("record %d: value: %w", i, err))
			return
		}
		if err := enc.Encode(tag, value); err != nil {
			s.fail(w, http.StatusUnprocessableEntity, fmt.Errorf("record %d: %w", i, err))
			return
		}
	}

	if asHex(r) {
		w.Header().Add("Content-type", "text/plain")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, "%X", out.Bytes())
		return
	}
	w.Header().Add("Content-type", "application/octet-stream")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(out.Bytes()); err != nil {
		s.log.Warn("unable to write response", "error", err)
	}
}

func (s *server) length(w http.ResponseWriter, r *http.Request) {
	codec, ok := s.profile(w, r)
	if !ok {
		return
	}

	var req LengthRequest
	if !s.readJSON(w, r, &req) {
		return
	}

	size, ok := new(big.Int).SetString(req.Size, 10)
	if !ok {
		s.fail(w, http.StatusBadRequest, fmt.Errorf("size must be a decimal integer, got %q", req.Size))
		return
	}

	field, err := bertlv.EncodeLengthPadded(size, codec.MinLengthOctets)
	if err != nil {
		s.fail(w, http.StatusUnprocessableEntity, err)
		return
	}
	s.writeJSON(w, http.StatusOK, LengthResponse{Length: fmt.Sprintf("%X", field)})
}

// profile resolves the codec settings for r. It writes an error response
// and returns false for an unknown profile.
func (s *server) profile(w http.ResponseWriter, r *http.Request) (config.Codec, bool) {
	name := r.URL.Query().Get("profile")
	if name == "" {
		return s.codec, true
	}
	c, ok := s.profiles[name]
	if !ok {
		s.fail(w, http.StatusNotFound, fmt.Errorf("unknown profile %q", name))
		return config.Codec{}, false
	}
	return c, true
}

func (s *server) readJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.bodyLimit))
	if err != nil {
		s.fail(w, bodyStatus(err), fmt.Errorf("unable to read body: %w", err))
		return false
	}
	if err := json.Unmarshal(body, v); err != nil {
		s.fail(w, http.StatusBadRequest, fmt.Errorf("unable to parse body: %w", err))
		return false
	}
	return true
}

func (s *server) decodeError(w http.ResponseWriter, err error, offset int64) {
	var ferr *bertlv.FormatError
	switch {
	case errors.As(err, &ferr):
		s.writeJSON(w, http.StatusUnprocessableEntity, ErrorResponse{Error: err.Error(), Offset: &ferr.Offset})
	case errors.Is(err, bertlv.ErrMalformed), errors.Is(err, bertlv.ErrInvalidFormat):
		s.writeJSON(w, http.StatusUnprocessableEntity, ErrorResponse{Error: err.Error(), Offset: &offset})
	default:
		s.fail(w, bodyStatus(err), err)
	}
}

func (s *server) fail(w http.ResponseWriter, status int, err error) {
	s.log.Debug("request failed", "status", status, "error", err)
	s.writeJSON(w, status, ErrorResponse{Error: err.Error()})
}

func (s *server) writeJSON(w http.ResponseWriter, status int, v any) {
	out, err := json.Marshal(v)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		s.log.Warn("unable to jsonify response", "error", err)
		return
	}

	w.Header().Add("Content-type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(out); err != nil {
		s.log.Warn("unable to write response", "error", err)
	}
}

func asHex(r *http.Request) bool {
	v, _ := strconv.ParseBool(r.URL.Query().Get("hex"))
	return v
}

func bodyStatus(err error) int {
	var mbe *http.MaxBytesError
	if errors.As(err, &mbe) {
		return http.StatusRequestEntityTooLarge
	}
	return http.StatusBadRequest
}
