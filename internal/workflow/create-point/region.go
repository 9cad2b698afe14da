// internal/workflow/create-point/region.go
package createpoint

import (
	"collection-points/internal/common/errors"
)

// cityTicket identifies the city fetch issued by one state selection.
type cityTicket struct {
	gen       uint64
	stateCode string
}

// selectState sets the state and clears the city and city list before a
// new fetch is issued. Re-selecting the current state also refetches.
func (st *Store) selectState(code string) (cityTicket, error) {
	var ticket cityTicket
	err := st.mutate(func(ev *eventBuffer) error {
		if err := st.closedErr(); err != nil {
			return err
		}
		if st.statesStatus.Status != FetchReady {
			return errors.NewSelectionRejectedError("uf", "state list not loaded")
		}
		if !contains(st.states, code) {
			return errors.NewSelectionRejectedError("uf", "unknown state").WithMetadata("stateCode", code)
		}

		previous := st.region.StateCode
		st.region = st.region.WithState(code)
		st.cities = nil
		st.citiesStatus = ListStatus{Status: FetchLoading}
		st.cityGen++
		ticket = cityTicket{gen: st.cityGen, stateCode: code}

		ev.add(EventStateSelected, map[string]any{"stateCode": code, "previous": previous})
		return nil
	})
	return ticket, err
}

// applyCities stores the result of the fetch behind ticket. A result for
// anything but the latest selection is dropped and false returned.
func (st *Store) applyCities(ticket cityTicket, cities []string, fetchErr error) bool {
	applied := false
	st.mutate(func(ev *eventBuffer) error {
		if st.phase == PhaseClosed || ticket.gen != st.cityGen {
			ev.add(EventCitiesDiscarded, map[string]any{
				"stateCode": ticket.stateCode,
				"current":   st.region.StateCode,
			})
			return nil
		}
		applied = true
		if fetchErr != nil {
			st.cities = nil
			st.citiesStatus = ListStatus{Status: FetchFailed, Err: fetchErr}
			ev.add(EventCitiesFailed, map[string]any{"stateCode": ticket.stateCode, "error": fetchErr.Error()})
			return nil
		}
		st.cities = append([]string(nil), cities...)
		st.citiesStatus = ListStatus{Status: FetchReady}
		ev.add(EventCitiesLoaded, map[string]any{"stateCode": ticket.stateCode, "count": len(cities)})
		return nil
	})
	return applied
}

// SelectCity picks a city from the list of the current state.
func (st *Store) SelectCity(name string) error {
	return st.mutate(func(ev *eventBuffer) error {
		if err := st.closedErr(); err != nil {
			return err
		}
		if st.region.StateCode == "" {
			return errors.NewSelectionRejectedError("city", "no state selected")
		}
		if st.citiesStatus.Status != FetchReady {
			return errors.NewSelectionRejectedError("city", "city list not loaded")
		}
		if !contains(st.cities, name) {
			return errors.NewSelectionRejectedError("city", "unknown city").
				WithMetadata("stateCode", st.region.StateCode).
				WithMetadata("city", name)
		}
		st.region.CityName = name
		ev.add(EventCitySelected, map[string]any{"stateCode": st.region.StateCode, "city": name})
		return nil
	})
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
