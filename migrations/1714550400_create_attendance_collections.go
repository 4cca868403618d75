package migrations

import (
	"github.com/pocketbase/pocketbase/core"
)

// recordIDPattern admits the UUIDv7 ids assigned by the application
// in addition to PocketBase's own 15 character ids.
const recordIDPattern = `^[a-z0-9-]+$`

func init() {
	core.AppMigrations.Register(func(app core.App) error {
		sewadars := core.NewBaseCollection("sewadars")
		allowApplicationIDs(sewadars)
		sewadars.Fields.Add(&core.TextField{
			Id:       "sew_name",
			Name:     "name",
			Required: true,
			Max:      255,
		})
		sewadars.AddIndex("idx_sewadars_name", false, "name", "")
		if err := app.Save(sewadars); err != nil {
			return err
		}

		counters := core.NewBaseCollection("counters")
		allowApplicationIDs(counters)
		counters.Fields.Add(&core.TextField{
			Id:       "cnt_name",
			Name:     "name",
			Required: true,
			Max:      255,
		})
		if err := app.Save(counters); err != nil {
			return err
		}

		records := core.NewBaseCollection("attendance_records")
		allowApplicationIDs(records)
		records.Fields.Add(
			&core.TextField{Id: "att_sewadar", Name: "sewadar_name", Required: true, Max: 255},
			&core.TextField{Id: "att_counter", Name: "counter_name", Required: true, Max: 255},
			&core.TextField{Id: "att_date", Name: "date", Required: true, Pattern: `^\d{4}-\d{2}-\d{2}$`},
			&core.TextField{Id: "att_in", Name: "in_time", Required: true, Pattern: `^([01]\d|2[0-3]):[0-5]\d$`},
			&core.TextField{Id: "att_out", Name: "out_time", Pattern: `^([01]\d|2[0-3]):[0-5]\d$`},
			&core.TextField{Id: "att_notes", Name: "notes", Max: 500},
			&core.NumberField{Id: "att_ts", Name: "timestamp", Required: true, OnlyInt: true},
		)
		records.AddIndex("idx_attendance_date", false, "date, timestamp", "")
		records.AddIndex("idx_attendance_sewadar", false, "sewadar_name", "")
		return app.Save(records)
	}, func(app core.App) error {
		for _, name := range []string{"attendance_records", "counters", "sewadars"} {
			collection, err := app.FindCollectionByNameOrId(name)
			if err != nil {
				return err
			}
			if err := app.Delete(collection); err != nil {
				return err
			}
		}
		return nil
	})
}

func allowApplicationIDs(collection *core.Collection) {
	if id, ok := collection.Fields.GetByName("id").(*core.TextField); ok {
		id.Pattern = recordIDPattern
		id.Min = 1
		id.Max = 64
	}
}
