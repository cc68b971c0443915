// Package serial turns domain values into plain JSON-ready maps.
//
// Serializers are registered on a Registry per exact Go type and mode:
//
//	reg := serial.NewRegistry()
//	serial.Register(reg, "", func(r Report, _ serial.Kwargs) (serial.Map, error) {
//		return serial.Map{"id": r.ID, "title": r.Title}, nil
//	})
//	serial.Register(reg, "full", func(r Report, kw serial.Kwargs) (serial.Map, error) {
//		return reg.Model(r)
//	})
//
//	one, err := reg.One(report, "", nil)
//	all, err := reg.Many(reports, "full", nil)
//
// Dispatch is by exact dynamic type: T and *T are different keys and an
// embedding type does not inherit the registrations of the embedded one.
// A missing registration is reported as a *NoSerializerError.
package serial
