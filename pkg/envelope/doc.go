/*
Package envelope builds rokt's wire reply: a single JSON object carrying
a status code, a human reason, and an optional payload (§4.6).

	{"status": 0, "reason": "OK", "datas": {"result": [...]}}

datas is emitted only when the status is StatusOK and the caller
actually supplied a payload. A blank reason is filled in from the
canonical status table; negative codes are normalised to StatusError
before the table lookup.
*/
package envelope
