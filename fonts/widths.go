package fonts

// liberationSerifWidths holds the Liberation Serif advance widths for
// WinAnsi codes 32 through 255, in 1/1000 em.
var liberationSerifWidths = [lastChar - firstChar + 1]int{
	250, 333, 408, 500, 500, 833, 778, 180, // 32-39
	333, 333, 500, 564, 250, 333, 250, 278, // 40-47
	500, 500, 500, 500, 500, 500, 500, 500, // 48-55
	500, 500, 278, 278, 564, 564, 564, 444, // 56-63
	921, 722, 667, 667, 722, 611, 556, 722, // 64-71
	722, 333, 389, 722, 611, 889, 722, 722, // 72-79
	556, 722, 667, 556, 611, 722, 722, 944, // 80-87
	722, 722, 611, 333, 278, 333, 469, 500, // 88-95
	333, 444, 500, 444, 500, 444, 333, 500, // 96-103
	500, 278, 278, 500, 278, 778, 500, 500, // 104-111
	500, 500, 333, 389, 278, 500, 500, 722, // 112-119
	500, 500, 444, 480, 200, 480, 541, 350, // 120-127
	500, 350, 333, 500, 444, 1000, 500, 500, // 128-135
	333, 1000, 556, 333, 889, 350, 611, 350, // 136-143
	350, 333, 333, 444, 444, 350, 500, 1000, // 144-151
	333, 980, 389, 333, 722, 350, 444, 722, // 152-159
	250, 333, 500, 500, 500, 500, 200, 500, // 160-167
	333, 760, 276, 500, 564, 333, 760, 333, // 168-175
	400, 564, 300, 300, 333, 500, 453, 250, // 176-183
	333, 300, 310, 500, 750, 750, 750, 444, // 184-191
	722, 722, 722, 722, 722, 722, 889, 667, // 192-199
	611, 611, 611, 611, 333, 333, 333, 333, // 200-207
	722, 722, 722, 722, 722, 722, 722, 564, // 208-215
	722, 722, 722, 722, 722, 722, 556, 500, // 216-223
	444, 444, 444, 444, 444, 444, 667, 444, // 224-231
	444, 444, 444, 444, 278, 278, 278, 278, // 232-239
	500, 500, 500, 500, 500, 500, 500, 564, // 240-247
	500, 500, 500, 500, 500, 500, 500, 500, // 248-255
}
