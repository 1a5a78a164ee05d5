package cpu

/*
	Echo monitor, loaded when no BASIC image is supplied.
	Expects the 8K status layout: bit 0 set while no input, bit 7 set
	while the transmitter is busy.
*/

var bootcode = [...]uint8{
	0xDB, 0x00,       /* 0000 IN 00h       ; status */
	0x0F,             /* 0002 RRC          ; bit 0 -> carry */
	0xDA, 0x00, 0x00, /* 0003 JC 0000h     ; nothing typed yet */
	0xDB, 0x01,       /* 0006 IN 01h       ; data */
	0x47,             /* 0008 MOV B,A */
	0xDB, 0x00,       /* 0009 IN 00h       ; status */
	0x07,             /* 000B RLC          ; bit 7 -> carry */
	0xDA, 0x09, 0x00, /* 000C JC 0009h     ; transmitter busy */
	0x78,             /* 000F MOV A,B */
	0xD3, 0x01,       /* 0010 OUT 01h */
	0xC3, 0x00, 0x00, /* 0012 JMP 0000h */
}

// EchoImage returns a copy of the built-in echo monitor.
func EchoImage() []byte {
	return append([]byte(nil), bootcode[:]...)
}
