package envelope

import "github.com/cuemby/rokt/pkg/record"

// Canonical status codes (§4.6).
const (
	StatusOK                 = 0
	StatusError              = 1
	StatusInserted           = 2
	StatusPredicateFailure   = 3
	StatusAlreadyExists      = 10
	StatusBadJSON            = 11
	StatusBadParam           = 12
	StatusConfigMissing      = 168
	StatusUnknownOperator    = 244
	StatusCannotCreateFile   = 423
	StatusCannotDeleteFiles  = 457
	StatusOverloaded         = 503
	StatusTimeout            = 504
	StatusUnknownDataset     = 567
)

var reasons = map[int]string{
	StatusOK:                "OK",
	StatusError:              "ERROR",
	StatusInserted:           "Inserted",
	StatusPredicateFailure:   "Can't get params / predicate failure",
	StatusAlreadyExists:      "Already Exists",
	StatusBadJSON:            "Bad file size format / invalid JSON in ADD",
	StatusBadParam:           "Bad file number format / missing required field",
	StatusConfigMissing:      "Config file not found",
	StatusUnknownOperator:    "Operator not found",
	StatusCannotCreateFile:   "Cannot create file",
	StatusCannotDeleteFiles:  "Cannot delete files",
	StatusOverloaded:         "Server overloaded",
	StatusTimeout:            "Request timeout",
	StatusUnknownDataset:     "NULL / unknown dataset",
}

const unknownErrorReason = "Unknown Error"

// Envelope is the single JSON object every command reply serialises to.
type Envelope struct {
	Status int            `json:"status"`
	Reason string         `json:"reason"`
	Datas  *record.Record `json:"datas,omitempty"`
}

// Build assembles an envelope. A negative status is normalised to
// StatusError. An empty reason is filled from the canonical status
// table (or "Unknown Error" for a code the table doesn't name). datas is
// dropped unless status is StatusOK, regardless of what the caller
// passed, since §4.6 only ever attaches a payload to a successful reply.
func Build(status int, reason string, datas *record.Record) Envelope {
	if status < 0 {
		status = StatusError
	}
	if reason == "" {
		reason = reasonFor(status)
	}
	if status != StatusOK {
		datas = nil
	}
	return Envelope{Status: status, Reason: reason, Datas: datas}
}

func reasonFor(status int) string {
	if r, ok := reasons[status]; ok {
		return r
	}
	return unknownErrorReason
}

// OK builds a successful envelope carrying datas.
func OK(datas record.Record) Envelope {
	return Build(StatusOK, "", &datas)
}

// OKWithReason builds a successful envelope with an explicit reason
// (CHANGE's "OK, mis à jour N ligne(s)." phrasing has no payload and a
// reason the table doesn't know about).
func OKWithReason(reason string) Envelope {
	return Build(StatusOK, reason, nil)
}

// Err builds a failure envelope from a status code alone, using the
// table's canonical reason.
func Err(status int) Envelope {
	return Build(status, "", nil)
}

// ErrReason builds a failure envelope with an explicit reason, used for
// cases like the unrecognised-command reply whose French phrasing isn't
// in the status table.
func ErrReason(status int, reason string) Envelope {
	return Build(status, reason, nil)
}
