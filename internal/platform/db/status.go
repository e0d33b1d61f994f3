package db

// StoreStatus is the document store health captured once at startup.
// It is passed by value to the services that read from the store.
type StoreStatus struct {
	Connected bool   `json:"connected"`
	Error     string `json:"error,omitempty"`
}

func Connected() StoreStatus { return StoreStatus{Connected: true} }

func Disconnected(err error) StoreStatus {
	st := StoreStatus{Connected: false, Error: "document store not connected"}
	if err != nil {
		st.Error = err.Error()
	}
	return st
}
