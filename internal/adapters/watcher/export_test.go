package watcher

var ConvertEvent = convertEvent
