package logsink

import "os"

const flagsAppendCreate = os.O_APPEND | os.O_CREATE | os.O_WRONLY
