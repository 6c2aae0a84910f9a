package model

import "fmt"

// PlanAdmission applies target to the given pending requests in the order
// supplied and adjusts the event's confirmed-requests counter. REJECTED
// applies unconditionally. CONFIRMED applies while capacity remains; once the
// participant limit is exhausted mid-batch the remaining requests are
// force-rejected rather than left pending. A request that is not PENDING
// fails the whole batch.
//
// The caller persists the mutated event and requests in one transaction, or
// discards both on error.
func (e *Event) PlanAdmission(reqs []*Request, target RequestStatus) (AdmissionResult, error) {
	var res AdmissionResult
	switch target {
	case RequestRejected:
		for _, r := range reqs {
			if r.Status != RequestPending {
				return AdmissionResult{}, fmt.Errorf("%w: request %d is %s", ErrRequestNotPending, r.ID, r.Status)
			}
			r.Status = RequestRejected
			res.Rejected = append(res.Rejected, *r)
		}
	case RequestConfirmed:
		for _, r := range reqs {
			if r.Status != RequestPending {
				return AdmissionResult{}, fmt.Errorf("%w: request %d is %s", ErrRequestNotPending, r.ID, r.Status)
			}
			if e.IsFull() {
				r.Status = RequestRejected
				res.Rejected = append(res.Rejected, *r)
				continue
			}
			r.Status = RequestConfirmed
			e.ConfirmedRequests++
			res.Confirmed = append(res.Confirmed, *r)
		}
	default:
		return AdmissionResult{}, fmt.Errorf("%w: got %s", ErrNotModeratable, target)
	}
	return res, nil
}
