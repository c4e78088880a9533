package scenario

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/edflow/edflow/internal/config"
	"github.com/edflow/edflow/internal/domain/emergency"
)

// BuildState turns a validated Config into the department aggregate at the
// given simulated start time.
func BuildState(cfg *config.Config, start time.Time) (*emergency.State, error) {
	rooms, err := cfg.Rooms()
	if err != nil {
		return nil, err
	}
	unitCaps, err := cfg.Units()
	if err != nil {
		return nil, err
	}
	var units []emergency.UnitSpec
	for _, u := range unitCaps {
		units = append(units, emergency.UnitSpec{
			Name:     emergency.TargetUnit(u.Name),
			Capacity: u.Capacity,
		})
	}
	settings := emergency.Settings{
		ConsultTransport:      time.Duration(cfg.ConsultTransportMinutes) * time.Minute,
		UnitTransportExpress:  time.Duration(cfg.UnitTransportExpressMinutes) * time.Minute,
		UnitTransportStandard: time.Duration(cfg.UnitTransportStandardMinutes) * time.Minute,
		ReturnTransport:       time.Duration(cfg.ReturnTransportMinutes) * time.Minute,
		MinDwell:              time.Duration(cfg.MinDwellMinutes) * time.Minute,
		SupervisionLapse:      time.Duration(cfg.SupervisionLapseMinutes) * time.Minute,
		LongWait:              time.Duration(cfg.LongWaitMinutes) * time.Minute,
		AideAbsenceCap:        time.Duration(cfg.AideAbsenceCapMinutes) * time.Minute,
		AideReturnWarning:     time.Duration(cfg.AideReturnWarningMinutes) * time.Minute,
		MobileStaffReserve:    cfg.MobileStaffReserve,
	}
	roster := emergency.DefaultRoster(cfg.MobileNurses, cfg.Aides)
	return emergency.NewState(start, settings, rooms, units, roster), nil
}

// Runner applies scenario steps to a Controller. In strict mode the first
// failing step aborts the run; otherwise failures are logged and the run
// continues, mirroring how a live operator would shrug off a rejected
// action.
type Runner struct {
	Controller *emergency.Controller
	Log        zerolog.Logger
	Strict     bool
}

// Run executes every step in order.
func (r *Runner) Run(sc *Scenario) error {
	r.Log.Info().Str("scenario", sc.Name).Int("steps", len(sc.Steps)).Msg("scenario started")
	for i, step := range sc.Steps {
		if err := r.applyStep(step); err != nil {
			if r.Strict {
				return fmt.Errorf("scenario %q step %d: %w", sc.Name, i+1, err)
			}
			r.Log.Warn().Err(err).Int("step", i+1).Msg("step rejected")
		}
	}
	r.Log.Info().Str("scenario", sc.Name).Time("now", r.Controller.Now()).Msg("scenario finished")
	return nil
}

func (r *Runner) applyStep(step Step) error {
	switch {
	case step.Admit != nil:
		a := step.Admit
		p := &emergency.Patient{
			ID:              a.ID,
			GivenName:       a.GivenName,
			FamilyName:      a.FamilyName,
			Severity:        emergency.Severity(a.Severity),
			Symptoms:        a.Symptoms,
			Age:             a.Age,
			PriorConditions: a.Conditions,
		}
		if p.ID == "" {
			_, _, err := r.Controller.AdmitNew(a.GivenName, a.FamilyName, p.Severity, a.Symptoms, a.Age)
			return err
		}
		return r.Controller.Admit(p)
	case step.AssignRoom != nil:
		_, err := r.Controller.AssignToWaitingRoom(step.AssignRoom.Patient, step.AssignRoom.Room)
		return err
	case step.Supervise != nil:
		return r.Controller.AssignSupervision(step.Supervise.Staff, step.Supervise.Room)
	case step.AutoCover:
		r.Controller.AutoCoverUnsupervisedRooms()
		return nil
	case step.ToConsultation != nil:
		_, err := r.Controller.StartTransportToConsultation(step.ToConsultation.Patient, step.ToConsultation.Staff)
		return err
	case step.EndConsultation != nil:
		return r.Controller.EndConsultation(step.EndConsultation.Patient, emergency.TargetUnit(step.EndConsultation.Unit))
	case step.ToUnit != nil:
		_, err := r.Controller.StartTransportToUnit(step.ToUnit.Patient, step.ToUnit.Staff)
		return err
	case step.ReturnToRoom != nil:
		_, err := r.Controller.ReturnToWaitingRoom(step.ReturnToRoom.Patient, step.ReturnToRoom.Staff, step.ReturnToRoom.Room)
		return err
	case step.Discharge != "":
		return r.Controller.Discharge(step.Discharge)
	case step.Tick > 0:
		r.Controller.Tick(step.Tick)
		return nil
	}
	return fmt.Errorf("empty step")
}
