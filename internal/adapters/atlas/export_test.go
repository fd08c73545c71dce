package atlas

var ParseColor = parseColor
