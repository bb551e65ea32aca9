package errors

import "errors"

// ErrSlotOccupied is returned by the repository when a conditional slot claim
// matches no row because another applicant already holds the slot.
var ErrSlotOccupied = errors.New("slot is already occupied")

// ErrNoActiveSlot is returned by the repository when a conditional slot release
// matches no row because the user holds no occupied slot in the event.
var ErrNoActiveSlot = errors.New("user holds no occupied slot in this event")
