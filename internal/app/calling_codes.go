package app

// callingCodes maps international calling codes to ISO country codes and names.
var callingCodes = map[string]countryInfo{
	"1":    {ISO: "US", Name: "United States/Canada"},
	"7":    {ISO: "RU", Name: "Russia/Kazakhstan"},
	"20":   {ISO: "EG", Name: "Egypt"},
	"27":   {ISO: "ZA", Name: "South Africa"},
	"30":   {ISO: "GR", Name: "Greece"},
	"31":   {ISO: "NL", Name: "Netherlands"},
	"32":   {ISO: "BE", Name: "Belgium"},
	"33":   {ISO: "FR", Name: "France"},
	"34":   {ISO: "ES", Name: "Spain"},
	"36":   {ISO: "HU", Name: "Hungary"},
	"39":   {ISO: "IT", Name: "Italy"},
	"40":   {ISO: "RO", Name: "Romania"},
	"41":   {ISO: "CH", Name: "Switzerland"},
	"43":   {ISO: "AT", Name: "Austria"},
	"44":   {ISO: "GB", Name: "United Kingdom"},
	"45":   {ISO: "DK", Name: "Denmark"},
	"46":   {ISO: "SE", Name: "Sweden"},
	"47":   {ISO: "NO", Name: "Norway"},
	"48":   {ISO: "PL", Name: "Poland"},
	"49":   {ISO: "DE", Name: "Germany"},
	"51":   {ISO: "PE", Name: "Peru"},
	"52":   {ISO: "MX", Name: "Mexico"},
	"53":   {ISO: "CU", Name: "Cuba"},
	"54":   {ISO: "AR", Name: "Argentina"},
	"55":   {ISO: "BR", Name: "Brazil"},
	"56":   {ISO: "CL", Name: "Chile"},
	"57":   {ISO: "CO", Name: "Colombia"},
	"58":   {ISO: "VE", Name: "Venezuela"},
	"60":   {ISO: "MY", Name: "Malaysia"},
	"61":   {ISO: "AU", Name: "Australia"},
	"62":   {ISO: "ID", Name: "Indonesia"},
	"63":   {ISO: "PH", Name: "Philippines"},
	"64":   {ISO: "NZ", Name: "New Zealand"},
	"65":   {ISO: "SG", Name: "Singapore"},
	"66":   {ISO: "TH", Name: "Thailand"},
	"81":   {ISO: "JP", Name: "Japan"},
	"82":   {ISO: "KR", Name: "South Korea"},
	"84":   {ISO: "VN", Name: "Vietnam"},
	"86":   {ISO: "CN", Name: "China"},
	"90":   {ISO: "TR", Name: "Turkey"},
	"91":   {ISO: "IN", Name: "India"},
	"92":   {ISO: "PK", Name: "Pakistan"},
	"93":   {ISO: "AF", Name: "Afghanistan"},
	"94":   {ISO: "LK", Name: "Sri Lanka"},
	"95":   {ISO: "MM", Name: "Myanmar"},
	"98":   {ISO: "IR", Name: "Iran"},
	"211":  {ISO: "SS", Name: "South Sudan"},
	"212":  {ISO: "MA", Name: "Morocco"},
	"213":  {ISO: "DZ", Name: "Algeria"},
	"216":  {ISO: "TN", Name: "Tunisia"},
	"218":  {ISO: "LY", Name: "Libya"},
	"220":  {ISO: "GM", Name: "Gambia"},
	"221":  {ISO: "SN", Name: "Senegal"},
	"222":  {ISO: "MR", Name: "Mauritania"},
	"223":  {ISO: "ML", Name: "Mali"},
	"224":  {ISO: "GN", Name: "Guinea"},
	"225":  {ISO: "CI", Name: "Ivory Coast"},
	"226":  {ISO: "BF", Name: "Burkina Faso"},
	"227":  {ISO: "NE", Name: "Niger"},
	"228":  {ISO: "TG", Name: "Togo"},
	"229":  {ISO: "BJ", Name: "Benin"},
	"230":  {ISO: "MU", Name: "Mauritius"},
	"231":  {ISO: "LR", Name: "Liberia"},
	"232":  {ISO: "SL", Name: "Sierra Leone"},
	"233":  {ISO: "GH", Name: "Ghana"},
	"234":  {ISO: "NG", Name: "Nigeria"},
	"235":  {ISO: "TD", Name: "Chad"},
	"236":  {ISO: "CF", Name: "Central African Republic"},
	"237":  {ISO: "CM", Name: "Cameroon"},
	"238":  {ISO: "CV", Name: "Cape Verde"},
	"239":  {ISO: "ST", Name: "São Tomé and Príncipe"},
	"240":  {ISO: "GQ", Name: "Equatorial Guinea"},
	"241":  {ISO: "GA", Name: "Gabon"},
	"242":  {ISO: "CG", Name: "Republic of the Congo"},
	"243":  {ISO: "CD", Name: "Democratic Republic of the Congo"},
	"244":  {ISO: "AO", Name: "Angola"},
	"245":  {ISO: "GW", Name: "Guinea-Bissau"},
	"246":  {ISO: "IO", Name: "British Indian Ocean Territory"},
	"248":  {ISO: "SC", Name: "Seychelles"},
	"249":  {ISO: "SD", Name: "Sudan"},
	"250":  {ISO: "RW", Name: "Rwanda"},
	"251":  {ISO: "ET", Name: "Ethiopia"},
	"252":  {ISO: "SO", Name: "Somalia"},
	"253":  {ISO: "DJ", Name: "Djibouti"},
	"254":  {ISO: "KE", Name: "Kenya"},
	"255":  {ISO: "TZ", Name: "Tanzania"},
	"256":  {ISO: "UG", Name: "Uganda"},
	"257":  {ISO: "BI", Name: "Burundi"},
	"258":  {ISO: "MZ", Name: "Mozambique"},
	"260":  {ISO: "ZM", Name: "Zambia"},
	"261":  {ISO: "MG", Name: "Madagascar"},
	"262":  {ISO: "RE", Name: "Réunion"},
	"263":  {ISO: "ZW", Name: "Zimbabwe"},
	"264":  {ISO: "NA", Name: "Namibia"},
	"265":  {ISO: "MW", Name: "Malawi"},
	"266":  {ISO: "LS", Name: "Lesotho"},
	"267":  {ISO: "BW", Name: "Botswana"},
	"268":  {ISO: "SZ", Name: "Eswatini"},
	"269":  {ISO: "KM", Name: "Comoros"},
	"290":  {ISO: "SH", Name: "Saint Helena"},
	"291":  {ISO: "ER", Name: "Eritrea"},
	"297":  {ISO: "AW", Name: "Aruba"},
	"298":  {ISO: "FO", Name: "Faroe Islands"},
	"299":  {ISO: "GL", Name: "Greenland"},
	"350":  {ISO: "GI", Name: "Gibraltar"},
	"351":  {ISO: "PT", Name: "Portugal"},
	"352":  {ISO: "LU", Name: "Luxembourg"},
	"353":  {ISO: "IE", Name: "Ireland"},
	"354":  {ISO: "IS", Name: "Iceland"},
	"355":  {ISO: "AL", Name: "Albania"},
	"356":  {ISO: "MT", Name: "Malta"},
	"357":  {ISO: "CY", Name: "Cyprus"},
	"358":  {ISO: "FI", Name: "Finland"},
	"359":  {ISO: "BG", Name: "Bulgaria"},
	"370":  {ISO: "LT", Name: "Lithuania"},
	"371":  {ISO: "LV", Name: "Latvia"},
	"372":  {ISO: "EE", Name: "Estonia"},
	"373":  {ISO: "MD", Name: "Moldova"},
	"374":  {ISO: "AM", Name: "Armenia"},
	"375":  {ISO: "BY", Name: "Belarus"},
	"376":  {ISO: "AD", Name: "Andorra"},
	"377":  {ISO: "MC", Name: "Monaco"},
	"378":  {ISO: "SM", Name: "San Marino"},
	"379":  {ISO: "VA", Name: "Vatican City"},
	"380":  {ISO: "UA", Name: "Ukraine"},
	"381":  {ISO: "RS", Name: "Serbia"},
	"382":  {ISO: "ME", Name: "Montenegro"},
	"383":  {ISO: "XK", Name: "Kosovo"},
	"385":  {ISO: "HR", Name: "Croatia"},
	"386":  {ISO: "SI", Name: "Slovenia"},
	"387":  {ISO: "BA", Name: "Bosnia and Herzegovina"},
	"389":  {ISO: "MK", Name: "North Macedonia"},
	"420":  {ISO: "CZ", Name: "Czech Republic"},
	"421":  {ISO: "SK", Name: "Slovakia"},
	"423":  {ISO: "LI", Name: "Liechtenstein"},
	"500":  {ISO: "FK", Name: "Falkland Islands"},
	"501":  {ISO: "BZ", Name: "Belize"},
	"502":  {ISO: "GT", Name: "Guatemala"},
	"503":  {ISO: "SV", Name: "El Salvador"},
	"504":  {ISO: "HN", Name: "Honduras"},
	"505":  {ISO: "NI", Name: "Nicaragua"},
	"506":  {ISO: "CR", Name: "Costa Rica"},
	"507":  {ISO: "PA", Name: "Panama"},
	"508":  {ISO: "PM", Name: "Saint Pierre and Miquelon"},
	"509":  {ISO: "HT", Name: "Haiti"},
	"590":  {ISO: "GP", Name: "Guadeloupe"},
	"591":  {ISO: "BO", Name: "Bolivia"},
	"592":  {ISO: "GY", Name: "Guyana"},
	"593":  {ISO: "EC", Name: "Ecuador"},
	"594":  {ISO: "GF", Name: "French Guiana"},
	"595":  {ISO: "PY", Name: "Paraguay"},
	"596":  {ISO: "MQ", Name: "Martinique"},
	"597":  {ISO: "SR", Name: "Suriname"},
	"598":  {ISO: "UY", Name: "Uruguay"},
	"599":  {ISO: "CW", Name: "Curaçao"},
	"670":  {ISO: "TL", Name: "East Timor"},
	"672":  {ISO: "NF", Name: "Norfolk Island"},
	"673":  {ISO: "BN", Name: "Brunei"},
	"674":  {ISO: "NR", Name: "Nauru"},
	"675":  {ISO: "PG", Name: "Papua New Guinea"},
	"676":  {ISO: "TO", Name: "Tonga"},
	"677":  {ISO: "SB", Name: "Solomon Islands"},
	"678":  {ISO: "VU", Name: "Vanuatu"},
	"679":  {ISO: "FJ", Name: "Fiji"},
	"680":  {ISO: "PW", Name: "Palau"},
	"681":  {ISO: "WF", Name: "Wallis and Futuna"},
	"682":  {ISO: "CK", Name: "Cook Islands"},
	"683":  {ISO: "NU", Name: "Niue"},
	"685":  {ISO: "WS", Name: "Samoa"},
	"686":  {ISO: "KI", Name: "Kiribati"},
	"687":  {ISO: "NC", Name: "New Caledonia"},
	"688":  {ISO: "TV", Name: "Tuvalu"},
	"689":  {ISO: "PF", Name: "French Polynesia"},
	"690":  {ISO: "TK", Name: "Tokelau"},
	"691":  {ISO: "FM", Name: "Micronesia"},
	"692":  {ISO: "MH", Name: "Marshall Islands"},
	"850":  {ISO: "KP", Name: "North Korea"},
	"852":  {ISO: "HK", Name: "Hong Kong"},
	"853":  {ISO: "MO", Name: "Macau"},
	"855":  {ISO: "KH", Name: "Cambodia"},
	"856":  {ISO: "LA", Name: "Laos"},
	"880":  {ISO: "BD", Name: "Bangladesh"},
	"886":  {ISO: "TW", Name: "Taiwan"},
	"960":  {ISO: "MV", Name: "Maldives"},
	"961":  {ISO: "LB", Name: "Lebanon"},
	"962":  {ISO: "JO", Name: "Jordan"},
	"963":  {ISO: "SY", Name: "Syria"},
	"964":  {ISO: "IQ", Name: "Iraq"},
	"965":  {ISO: "KW", Name: "Kuwait"},
	"966":  {ISO: "SA", Name: "Saudi Arabia"},
	"967":  {ISO: "YE", Name: "Yemen"},
	"968":  {ISO: "OM", Name: "Oman"},
	"970":  {ISO: "PS", Name: "Palestine"},
	"971":  {ISO: "AE", Name: "UAE"},
	"972":  {ISO: "IL", Name: "Israel"},
	"973":  {ISO: "BH", Name: "Bahrain"},
	"974":  {ISO: "QA", Name: "Qatar"},
	"975":  {ISO: "BT", Name: "Bhutan"},
	"976":  {ISO: "MN", Name: "Mongolia"},
	"977":  {ISO: "NP", Name: "Nepal"},
	"992":  {ISO: "TJ", Name: "Tajikistan"},
	"993":  {ISO: "TM", Name: "Turkmenistan"},
	"994":  {ISO: "AZ", Name: "Azerbaijan"},
	"995":  {ISO: "GE", Name: "Georgia"},
	"996":  {ISO: "KG", Name: "Kyrgyzstan"},
	"998":  {ISO: "UZ", Name: "Uzbekistan"},
	"1242": {ISO: "BS", Name: "Bahamas"},
	"1246": {ISO: "BB", Name: "Barbados"},
	"1264": {ISO: "AI", Name: "Anguilla"},
	"1268": {ISO: "AG", Name: "Antigua and Barbuda"},
	"1284": {ISO: "VG", Name: "British Virgin Islands"},
	"1340": {ISO: "VI", Name: "US Virgin Islands"},
	"1345": {ISO: "KY", Name: "Cayman Islands"},
	"1441": {ISO: "BM", Name: "Bermuda"},
	"1473": {ISO: "GD", Name: "Grenada"},
	"1649": {ISO: "TC", Name: "Turks and Caicos"},
	"1664": {ISO: "MS", Name: "Montserrat"},
	"1758": {ISO: "LC", Name: "Saint Lucia"},
	"1767": {ISO: "DM", Name: "Dominica"},
	"1784": {ISO: "VC", Name: "Saint Vincent and the Grenadines"},
	"1868": {ISO: "TT", Name: "Trinidad and Tobago"},
	"1876": {ISO: "JM", Name: "Jamaica"},
}
