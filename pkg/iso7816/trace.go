package iso7816

// A Transaction is one command and its response. A Trace is the ordered list of
// transactions that served a single logical request, including GET RESPONSE and
// re-issued commands. Only the final transaction decides the outcome.

// Transaction represents a completed Command-Response pair.
type Transaction struct {
	Command  *CommandAPDU
	Response *ResponseAPDU
}

// IsSuccess checks if the transaction ended with a successful status.
// It returns false if the response is missing.
func (t *Transaction) IsSuccess() bool {
	if t.Response == nil {
		return false
	}
	return t.Response.Status.IsSuccess()
}

// Trace is a sequence of transactions.
type Trace []Transaction

// Last returns the final transaction of the trace, or nil if the trace is empty.
func (t Trace) Last() *Transaction {
	if len(t) == 0 {
		return nil
	}
	return &t[len(t)-1]
}

// IsSuccess checks if the final transaction was successful.
func (t Trace) IsSuccess() bool {
	last := t.Last()
	if last == nil {
		return false
	}
	return last.IsSuccess()
}

// Status returns the status word of the final response, or 0 if there is none.
func (t Trace) Status() StatusWord {
	last := t.Last()
	if last == nil || last.Response == nil {
		return 0
	}
	return last.Response.Status
}

// Data returns the response data of the logical request. Data answered alongside 61XX is
// joined with what the GET RESPONSE chain returns; data from a command that had to be
// re-issued after 6CXX is dropped.
func (t Trace) Data() []byte {
	var out []byte
	for i, tx := range t {
		if tx.Response == nil {
			return nil
		}
		out = append(out, tx.Response.Data...)
		if i < len(t)-1 && tx.Response.Status.SW1() != 0x61 {
			out = nil
		}
	}
	return out
}
