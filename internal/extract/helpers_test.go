package extract

import "reflect"

var reflectString = reflect.TypeOf("")
