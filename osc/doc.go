// Package osc implements the Open Sound Control 1.0 protocol.
//
// OSC packets come in two flavors: messages, carrying an address pattern and
// a list of typed arguments, and bundles, carrying a timetag and a list of
// nested packets. Both serialize to the big-endian, 4-byte aligned wire
// format described by the OSC 1.0 specification.
//
// A minimal sender:
//
//	client := osc.NewClient("localhost", 8765)
//	msg := osc.NewMessage("/osc/address")
//	msg.Append(int32(111))
//	msg.Append(true)
//	msg.Append("hello")
//	client.Send(msg)
//
// A minimal receiver:
//
//	d := osc.NewDispatcher()
//	d.AddMethodFunc("/message/address", func(msg *osc.Message) {
//		osc.PrintMessage(msg)
//	})
//
//	server := &osc.Server{
//		Addr:    "127.0.0.1:8765",
//		Handler: d,
//	}
//	server.ListenAndServe()
package osc
