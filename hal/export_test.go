package hal

// UnregisterAll clears the driver registry between tests.
var UnregisterAll = unregisterAll
