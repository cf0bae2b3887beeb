package dbus

// registerBusSignals wires the well-known signals emitted by the bus
// daemon itself and by the standard freedesktop interfaces into the
// signal type registry, so Watcher deliveries for them decode into
// typed values instead of generic structs.
func registerBusSignals() {
	RegisterSignalType[NameOwnerChanged]("org.freedesktop.DBus", "NameOwnerChanged")
	RegisterSignalType[NameLost]("org.freedesktop.DBus", "NameLost")
	RegisterSignalType[NameAcquired]("org.freedesktop.DBus", "NameAcquired")
	RegisterSignalType[ActivatableServicesChanged]("org.freedesktop.DBus", "ActivatableServicesChanged")

	RegisterSignalType[PropertiesChanged]("org.freedesktop.DBus.Properties", "PropertiesChanged")

	RegisterSignalType[InterfacesAdded]("org.freedesktop.DBus.ObjectManager", "InterfacesAdded")
	RegisterSignalType[InterfacesRemoved]("org.freedesktop.DBus.ObjectManager", "InterfacesRemoved")
}

func init() {
	registerBusSignals()
}
